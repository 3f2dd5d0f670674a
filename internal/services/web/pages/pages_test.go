package pages

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/georgemunganga/nwc-marketplace-clone/internal/services/web/templates"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *recordingObserver) PageLoaded(page string, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, page+":"+result)
}

func stubPage(id ID) Page {
	return Page{ID: id, Render: func(templates.Localizer, map[string]string) templ.Component { return templ.NopComponent }}
}

func TestRegistryCachesSuccessfulLoad(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	observer := &recordingObserver{}
	r := NewRegistry(map[ID]Loader{
		Home: func(context.Context) (Page, error) {
			calls.Add(1)
			return stubPage(Home), nil
		},
	}, observer)

	for i := 0; i < 3; i++ {
		page, err := r.Load(context.Background(), Home)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if page.ID != Home {
			t.Fatalf("page id = %q", page.ID)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
	if len(observer.results) != 1 || observer.results[0] != "Home:ok" {
		t.Fatalf("observer = %v", observer.results)
	}
}

func TestRegistryDoesNotCacheFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := NewRegistry(map[ID]Loader{
		Shop: func(context.Context) (Page, error) {
			if calls.Add(1) == 1 {
				return Page{}, errors.New("chunk missing")
			}
			return stubPage(Shop), nil
		},
	}, nil)

	if _, err := r.Load(context.Background(), Shop); err == nil {
		t.Fatalf("first Load: expected error")
	}
	if _, err := r.Load(context.Background(), Shop); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader calls = %d, want 2", got)
	}
}

func TestRegistryDeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	r := NewRegistry(map[ID]Loader{
		Cart: func(context.Context) (Page, error) {
			calls.Add(1)
			<-release
			return stubPage(Cart), nil
		},
	}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Load(context.Background(), Cart)
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
}

func TestRegistryLoadHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	r := NewRegistry(map[ID]Loader{
		FAQ: func(context.Context) (Page, error) {
			<-release
			return stubPage(FAQ), nil
		},
	}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Load(ctx, FAQ); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Load = %v, want deadline exceeded", err)
	}
}

func TestRegistryUnknownPage(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil, nil)
	if _, err := r.Load(context.Background(), Home); err == nil {
		t.Fatalf("expected error for unregistered page")
	}
	if err := r.Validate(Home); err == nil {
		t.Fatalf("Validate: expected error")
	}
}

func TestCatalogCoversEveryPage(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Catalog(), nil)
	if err := r.Validate(All...); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := len(r.loaders); got != len(All) {
		t.Fatalf("registered = %d, want %d", got, len(All))
	}
	if len(All) != 47 {
		t.Fatalf("catalog size = %d, want 47", len(All))
	}
}

func TestCatalogPlaceholderRendersTitleAndParams(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Catalog(), nil)
	page, err := r.Load(context.Background(), ProductDetail)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := page.Render(nil, map[string]string{"id": "p-42"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `data-page="ProductDetail"`) || !strings.Contains(html, "p-42") {
		t.Fatalf("unexpected html: %s", html)
	}
}
