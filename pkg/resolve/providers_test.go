package resolve

import (
	"context"
	"sync"
	"testing"

	"github.com/kalimokai/apkgraph/pkg/index"
	"github.com/kalimokai/apkgraph/pkg/observability"
)

func pkg(name, ver string, priority int) *index.Package {
	return &index.Package{
		Name:             name,
		Version:          ver,
		Arch:             "x86_64",
		Timestamp:        "1500000000",
		ProviderPriority: priority,
	}
}

func set(pkgs ...*index.Package) *index.ProviderSet {
	s := index.NewProviderSet()
	for _, p := range pkgs {
		s.Set(p.Name, p)
	}
	return s
}

func TestPickProvider(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		providers *index.ProviderSet
		sel       Selection
		want      string
	}{
		{
			name:      "no provider",
			requested: "ghost",
			providers: set(),
			want:      "",
		},
		{
			name:      "single provider",
			requested: "so:libc.so.1",
			providers: set(pkg("musl", "1.2", -1)),
			want:      "musl",
		},
		{
			name:      "same name wins",
			requested: "mesa-egl",
			providers: set(pkg("libhybris", "1", -1), pkg("mesa-egl", "1", -1)),
			want:      "mesa-egl",
		},
		{
			name:      "install set wins",
			requested: "so:libGL.so.1",
			providers: set(pkg("mesa-egl", "1", -1), pkg("libhybris", "1", -1)),
			sel:       Selection{InstallSet: []string{"libhybris"}},
			want:      "libhybris",
		},
		{
			name:      "installed wins",
			requested: "so:libGL.so.1",
			providers: set(pkg("mesa-egl", "1", -1), pkg("libhybris", "1", -1)),
			sel: Selection{Installed: index.InstalledView{
				"libhybris": pkg("libhybris", "1", -1),
			}},
			want: "libhybris",
		},
		{
			name:      "override wins",
			requested: "so:libGL.so.1",
			providers: set(pkg("mesa-egl", "1", -1), pkg("libhybris", "1", -1)),
			sel:       Selection{Overrides: map[string]string{"so:libGL.so.1": "libhybris"}},
			want:      "libhybris",
		},
		{
			name:      "override for unknown provider is ignored",
			requested: "so:libGL.so.1",
			providers: set(pkg("mesa-egl", "1", -1), pkg("libhybris", "1", -1)),
			sel:       Selection{Overrides: map[string]string{"so:libGL.so.1": "ghost"}},
			want:      "mesa-egl",
		},
		{
			name:      "highest priority wins",
			requested: "cmd:sh",
			providers: set(pkg("dash-binsh", "1", 5), pkg("busybox", "1", 10)),
			want:      "busybox",
		},
		{
			name:      "declared zero beats undeclared",
			requested: "cmd:sh",
			providers: set(pkg("wrapper-sh", "1", 0), pkg("busybox", "1", -1)),
			want:      "wrapper-sh",
		},
		{
			name:      "no priority falls through to shortest",
			requested: "so:libGL.so.1",
			providers: set(pkg("mesa-purism-gc7000-egl", "1", -1), pkg("mesa-egl", "1", -1)),
			want:      "mesa-egl",
		},
		{
			name:      "priority tie falls through to shortest",
			requested: "cmd:sh",
			providers: set(pkg("dash-binsh", "1", 10), pkg("busybox", "1", 10)),
			want:      "busybox",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickProvider(context.Background(), tt.requested, tt.providers, tt.sel)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("PickProvider = %v, want nil", got.Name)
				}
				return
			}
			if got == nil || got.Name != tt.want {
				t.Errorf("PickProvider = %v, want %s", got, tt.want)
			}
		})
	}
}

// trackingResolveHooks records ambiguity reports.
type trackingResolveHooks struct {
	observability.NoopResolveHooks
	mu        sync.Mutex
	ambiguous []string
}

func (h *trackingResolveHooks) OnAmbiguousProvider(_ context.Context, name string, _ []string, chosen string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ambiguous = append(h.ambiguous, name+"="+chosen)
}

func TestPickProviderReportsAmbiguity(t *testing.T) {
	hooks := &trackingResolveHooks{}
	observability.SetResolveHooks(hooks)
	defer observability.Reset()

	got := PickProvider(context.Background(), "so:libGL.so.1",
		set(pkg("mesa-purism-gc7000-egl", "1", -1), pkg("mesa-egl", "1", -1)), Selection{})
	if got == nil || got.Name != "mesa-egl" {
		t.Fatalf("PickProvider = %v, want mesa-egl", got)
	}
	if len(hooks.ambiguous) != 1 || hooks.ambiguous[0] != "so:libGL.so.1=mesa-egl" {
		t.Errorf("ambiguity reports = %v, want one for so:libGL.so.1", hooks.ambiguous)
	}

	// Unambiguous picks stay silent.
	PickProvider(context.Background(), "mesa-egl",
		set(pkg("libhybris", "1", -1), pkg("mesa-egl", "1", -1)), Selection{})
	if len(hooks.ambiguous) != 1 {
		t.Errorf("unambiguous pick reported ambiguity: %v", hooks.ambiguous)
	}
}

func TestHighestPriorityKeepsOrder(t *testing.T) {
	providers := set(pkg("a-long-name", "1", 3), pkg("b", "1", 3), pkg("c", "1", 1))
	best := HighestPriority(providers, "cmd:x", nil)
	names := best.Names()
	if len(names) != 2 || names[0] != "a-long-name" || names[1] != "b" {
		t.Errorf("best = %v, want [a-long-name b]", names)
	}
}

func TestShortestPrefersFirstOnTie(t *testing.T) {
	providers := set(pkg("abc", "1", -1), pkg("xyz", "1", -1))
	got := Shortest(providers, "cmd:x", nil)
	if got.Name != "abc" {
		t.Errorf("Shortest = %s, want abc (first added)", got.Name)
	}
}
