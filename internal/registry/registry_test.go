package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/handmade/internal/core"
)

type fakeModule struct{ Stub }

func (fakeModule) ID() string { return "fake" }

func TestRegisterAndCreate(t *testing.T) {
	Register(ModuleInfo{ID: "test-fake", Title: "Fake"}, func(Options) (Module, error) {
		return fakeModule{}, nil
	})
	Register(ModuleInfo{ID: "test-broken", Title: "Broken"}, func(Options) (Module, error) {
		return nil, errors.New("no script")
	})

	if !Exists("test-fake") {
		t.Error("Exists(test-fake) = false, expected true")
	}

	m, err := Create("test-fake", Options{})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if m.ID() != "fake" {
		t.Errorf("ID() = %q, expected fake", m.ID())
	}

	if _, err := Create("test-broken", Options{}); err == nil {
		t.Error("factory error should be returned")
	}
	if _, err := Create("missing", Options{}); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("Create(missing) = %v, expected ErrUnknownModule", err)
	}

	found := false
	for _, info := range List() {
		if info.ID == "test-fake" && info.Title == "Fake" {
			found = true
		}
	}
	if !found {
		t.Error("List() does not include test-fake")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(Options) (Module, error) { return Stub{}, nil }
	Register(ModuleInfo{ID: "test-dup"}, f)

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register(ModuleInfo{ID: "test-dup"}, f)
}

func TestStubIsSilent(t *testing.T) {
	var s Module = Stub{}
	sb := &core.SoundBuffer{SampleCount: 4, Samples: []int16{1, 2, 3, 4, 5, 6, 7, 8}}
	buf := core.NewPixelBuffer(4, 4)
	buf.Clear(core.ColorRed)

	s.UpdateAndRender(core.NewMemory(8, 8), &core.GameInput{}, buf)
	s.GetSoundSamples(core.NewMemory(8, 8), sb)

	for i, v := range sb.Samples {
		if v != 0 {
			t.Fatalf("sample %d = %d, expected silence", i, v)
		}
	}
	if buf.At(0, 0) != core.ColorRed {
		t.Error("stub should not draw")
	}
}
