package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	pkgcontract "github.com/goliatone/go-workforce-insights/pkg/contract"
)

const stubDocument = "openapi: 3.0.3\ninfo: {title: stub, version: '1'}\npaths: {}\n"

func TestLoader_FromFS(t *testing.T) {
	files := fstest.MapFS{
		"contracts/stub.yaml": &fstest.MapFile{Data: []byte(stubDocument)},
	}
	l := New(pkgcontract.NewLoaderOptions(pkgcontract.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), pkgcontract.SourceFromFS("contracts/stub.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != stubDocument {
		t.Fatalf("unexpected payload: %q", doc.Raw())
	}
	if doc.Location() != "contracts/stub.yaml" {
		t.Fatalf("unexpected location: %q", doc.Location())
	}
}

func TestLoader_FromFSRequiresFileSystem(t *testing.T) {
	l := New(pkgcontract.NewLoaderOptions())
	if _, err := l.Load(context.Background(), pkgcontract.SourceFromFS("stub.yaml")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestLoader_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stub.yaml")
	if err := os.WriteFile(path, []byte(stubDocument), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := New(pkgcontract.NewLoaderOptions())
	doc, err := l.Load(context.Background(), pkgcontract.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Source().Kind() != pkgcontract.SourceKindFile {
		t.Fatalf("unexpected source kind %q", doc.Source().Kind())
	}
}

func TestLoader_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.3","info":{"title":"stub","version":"1"},"paths":{}}`))
	}))
	defer srv.Close()

	disabled := New(pkgcontract.NewLoaderOptions())
	if _, err := disabled.Load(context.Background(), pkgcontract.SourceFromURL(srv.URL+"/openapi.json")); err == nil {
		t.Fatalf("expected http loading to be disabled by default")
	}

	l := New(pkgcontract.NewLoaderOptions(pkgcontract.WithHTTPClient(srv.Client())))
	if _, err := l.Load(context.Background(), pkgcontract.SourceFromURL(srv.URL+"/openapi.json")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := l.Load(context.Background(), pkgcontract.SourceFromURL(srv.URL+"/missing")); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestLoader_NilSource(t *testing.T) {
	l := New(pkgcontract.NewLoaderOptions())
	if _, err := l.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}
