package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSectionHooks{}
	s.OnAssembleStart(ctx, "tour", 12)
	s.OnAssembleComplete(ctx, "tour", 12, time.Second, nil)
	s.OnRenderStart(ctx, []string{"svg"})
	s.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "section")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/sections")
	h.OnResponse(ctx, "POST", "/v1/sections", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Section().(NoopSectionHooks); !ok {
		t.Error("Section() should return NoopSectionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customSection := &testSectionHooks{}
	SetSectionHooks(customSection)
	if Section() != customSection {
		t.Error("SetSectionHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Section().(NoopSectionHooks); !ok {
		t.Error("Reset() should restore NoopSectionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testSectionHooks{}
	SetSectionHooks(custom)
	SetSectionHooks(nil)

	if Section() != custom {
		t.Error("SetSectionHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnAssembleStart(ctx, "tour", 7)
	h.OnAssembleComplete(ctx, "tour", 7, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "section")
	h.OnResponse(ctx, "POST", "/v1/sections", 422, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"trace", "assemble start", "assemble failed", "boom", "cache hit", "status=422"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testSectionHooks struct{ NoopSectionHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
