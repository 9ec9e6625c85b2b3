package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewScraperHTTPClient_Config(t *testing.T) {
	c := newScraperHTTPClient(7*time.Second, true)
	if c.Timeout != 7*time.Second {
		t.Fatalf("timeout=%v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	if tr.MaxIdleConnsPerHost == 0 || tr.MaxIdleConnsPerHost > 8 {
		t.Fatalf("expected a small per-host pool, got %d", tr.MaxIdleConnsPerHost)
	}
	if tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("verification should be on by default")
	}
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
}

func TestNewScraperHTTPClient_SkipVerify(t *testing.T) {
	tr := newScraperHTTPClient(time.Second, false).Transport.(*http.Transport)
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("expected InsecureSkipVerify when sslVerify=false")
	}
}
