package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnFontsStart(ctx, "Go", 12)
	p.OnFontsComplete(ctx, "Go", time.Second, nil)
	p.OnLoadStart(ctx, "2023")
	p.OnLoadComplete(ctx, "2023", 210, time.Second, nil)
	p.OnLayoutStart(ctx, "root", 210)
	p.OnLayoutComplete(ctx, "root", 209, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "fonts")
	c.OnCacheMiss(ctx, "frame")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.worldbank.org", "/v2/country")
	h.OnResponse(ctx, "GET", "api.worldbank.org", "/v2/country", 200, time.Second)
	h.OnError(ctx, "GET", "api.worldbank.org", "/v2/country", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	for name, ok := range map[string]bool{
		"pipeline": isNoop[NoopPipelineHooks](Pipeline()),
		"cache":    isNoop[NoopCacheHooks](Cache()),
		"http":     isNoop[NoopHTTPHooks](HTTP()),
	} {
		if !ok {
			t.Errorf("%s hooks are not the no-op default", name)
		}
	}

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)
	SetPipelineHooks(&testPipelineHooks{})
	SetHTTPHooks(&testHTTPHooks{})

	ctx := context.Background()
	Cache().OnCacheMiss(ctx, "frame")
	Cache().OnCacheHit(ctx, "frame")
	Cache().OnCacheHit(ctx, "fonts")
	if rec.hits != 2 || rec.misses != 1 {
		t.Errorf("recorded %d hits and %d misses, want 2 and 1", rec.hits, rec.misses)
	}

	Reset()
	if !isNoop[NoopCacheHooks](Cache()) || !isNoop[NoopPipelineHooks](Pipeline()) || !isNoop[NoopHTTPHooks](HTTP()) {
		t.Error("Reset() left custom hooks registered")
	}
}

func isNoop[T any](h any) bool {
	_, ok := h.(T)
	return ok
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type recordingCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (r *recordingCacheHooks) OnCacheHit(context.Context, string)  { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(context.Context, string) { r.misses++ }
