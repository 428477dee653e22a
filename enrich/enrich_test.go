package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/jobtrack/core"
)

func page(head string) string {
	return "<!doctype html><html><head>" + head + "</head><body><h1>ignored</h1></body></html>"
}

func TestFetchPreview(t *testing.T) {
	tests := []struct {
		name string
		head string
		want core.Preview
	}{
		{
			name: "linkedin hiring",
			head: `<meta property="og:title" content="Stripe hiring Backend Engineer in Dublin, Ireland | LinkedIn"><meta property="og:site_name" content="LinkedIn">`,
			want: core.Preview{Title: "Backend Engineer", Company: "Stripe"},
		},
		{
			name: "greenhouse at",
			head: `<title>Job Application for Software Engineer at Tesla</title>`,
			want: core.Preview{Title: "Software Engineer", Company: "Tesla"},
		},
		{
			name: "separator with board",
			head: `<title>Senior SRE - Acme Robotics - Lever</title>`,
			want: core.Preview{Title: "Senior SRE", Company: "Acme Robotics"},
		},
		{
			name: "site name fallback",
			head: `<title>Staff Designer | Careers</title><meta property="og:site_name" content="Figma">`,
			want: core.Preview{Title: "Staff Designer", Company: "Figma"},
		},
		{
			name: "board site name is not a company",
			head: `<title>Data Analyst</title><meta property="og:site_name" content="Indeed">`,
			want: core.Preview{Title: "Data Analyst"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, page(tt.head))
			}))
			defer srv.Close()

			got, err := NewHTMLPreviewer().FetchPreview(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchPreview_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		_, err := NewHTMLPreviewer().FetchPreview(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, page(""))
		}))
		defer srv.Close()

		_, err := NewHTMLPreviewer().FetchPreview(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrNoPreview)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		p := NewHTMLPreviewer(func(o *Options) { o.Timeout = 20 * time.Millisecond })
		_, err := p.FetchPreview(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("body limit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html><head>"+strings.Repeat(" ", 4096)+"<title>Late Title at Acme</title></head></html>")
		}))
		defer srv.Close()

		p := NewHTMLPreviewer(func(o *Options) { o.MaxBytes = 1024 })
		_, err := p.FetchPreview(context.Background(), srv.URL)
		assert.ErrorIs(t, err, ErrNoPreview)
	})
}
