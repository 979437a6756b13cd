package profile

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func filledProfile() (p Profile) {
	p = Profile{
		Name:       "Layla",
		Title:      "Engineer",
		Email:      "not-an-email",
		Phone:      "+20 100",
		Summary:    "Builds things",
		Skills:     "Go, networking",
		Experience: "Acme 2020-2024",
	}
	return p
}

func TestNewStoreDefaults(t *testing.T) {
	store := NewStore()
	state := store.Snapshot()

	if state.Profile != (Profile{}) {
		t.Errorf("Expected empty profile, got %+v", state.Profile)
	}

	if state.Language != DefaultLanguage {
		t.Errorf("Expected language %s, got %s", DefaultLanguage, state.Language)
	}

	if state.Template != DefaultTemplate {
		t.Errorf("Expected template %s, got %s", DefaultTemplate, state.Template)
	}
}

func TestSetFieldLeavesOthersUntouched(t *testing.T) {
	for _, field := range Fields() {
		t.Run(string(field), func(t *testing.T) {
			store := NewStore(WithProfile(filledProfile()))
			before := store.Snapshot().Profile

			err := store.SetField(field, "changed value")
			if err != nil {
				t.Fatalf("SetField failed: %v", err)
			}

			after := store.Snapshot().Profile
			if after.Get(field) != "changed value" {
				t.Errorf("Expected %s to be updated, got %q", field, after.Get(field))
			}

			for _, other := range Fields() {
				if other == field {
					continue
				}
				if after.Get(other) != before.Get(other) {
					t.Errorf("Field %s changed from %q to %q", other, before.Get(other), after.Get(other))
				}
			}
		})
	}
}

func TestSetFieldAcceptsEmptyAndArbitraryValues(t *testing.T) {
	store := NewStore(WithProfile(filledProfile()))

	err := store.SetField(FieldEmail, "")
	if err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	if store.Snapshot().Profile.Email != "" {
		t.Error("Expected empty email")
	}

	err = store.SetField(FieldPhone, "<script>call me</script>")
	if err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
}

func TestSetFieldUnknown(t *testing.T) {
	store := NewStore()
	err := store.SetField(Field("address"), "x")
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func TestParseField(t *testing.T) {
	field, err := ParseField("skills")
	if err != nil {
		t.Fatalf("ParseField failed: %v", err)
	}
	if field != FieldSkills {
		t.Errorf("Expected skills, got %s", field)
	}

	_, err = ParseField("Skills")
	if err == nil {
		t.Error("Expected error for mismatched case, got nil")
	}
}

func TestSelectionDoesNotTouchProfile(t *testing.T) {
	store := NewStore(WithProfile(filledProfile()))
	before := store.Snapshot()

	store.SetLanguage("en")
	store.SetLanguage("en")
	store.SetTemplate("modern")

	after := store.Snapshot()
	if after.Profile != before.Profile {
		t.Errorf("Profile changed on selection: %+v -> %+v", before.Profile, after.Profile)
	}

	if after.Language != "en" || after.Template != "modern" {
		t.Errorf("Unexpected selection %s/%s", after.Language, after.Template)
	}
}

func TestReplaceSummaryIf(t *testing.T) {
	store := NewStore()
	rev := store.Snapshot().Revision

	// A manual edit lands first.
	err := store.SetField(FieldSummary, "typed by hand")
	if err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	if store.ReplaceSummaryIf(rev, "generated") {
		t.Error("Expected stale revision to be rejected")
	}

	if store.Snapshot().Profile.Summary != "typed by hand" {
		t.Errorf("Summary overwritten: %q", store.Snapshot().Profile.Summary)
	}

	rev = store.Snapshot().Revision
	if !store.ReplaceSummaryIf(rev, "generated") {
		t.Error("Expected current revision to apply")
	}

	if store.Snapshot().Profile.Summary != "generated" {
		t.Errorf("Expected generated summary, got %q", store.Snapshot().Profile.Summary)
	}
}

func TestNonSummaryEditsKeepRevision(t *testing.T) {
	store := NewStore()
	rev := store.Snapshot().Revision

	_ = store.SetField(FieldName, "Omar")
	store.SetTemplate("modern")

	if store.Snapshot().Revision != rev {
		t.Error("Revision moved on a non-summary edit")
	}
}

func TestSubscribe(t *testing.T) {
	store := NewStore()

	var got []State
	unsubscribe := store.Subscribe(func(state State) {
		got = append(got, state)
	})

	_ = store.SetField(FieldName, "Sara")
	store.SetLanguage("en")
	store.ReplaceSummary("hello")

	if len(got) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(got))
	}

	if got[0].Profile.Name != "Sara" {
		t.Errorf("Expected name in first notification, got %+v", got[0])
	}

	if got[2].Profile.Summary != "hello" || got[2].Language != "en" {
		t.Errorf("Unexpected last notification %+v", got[2])
	}

	unsubscribe()
	unsubscribe()
	_ = store.SetField(FieldName, "ignored")

	if len(got) != 3 {
		t.Errorf("Expected no notification after unsubscribe, got %d", len(got))
	}
}

func TestSubscribeCanReadStore(t *testing.T) {
	store := NewStore()

	var seen string
	store.Subscribe(func(state State) {
		// Listeners run outside the lock.
		seen = store.Snapshot().Profile.Title
	})

	_ = store.SetField(FieldTitle, "Engineer")

	if seen != "Engineer" {
		t.Errorf("Expected listener to read Engineer, got %q", seen)
	}
}

func TestConcurrentEdits(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for _, field := range Fields() {
		wg.Add(1)
		go func(f Field) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = store.SetField(f, string(f))
			}
		}(field)
	}
	wg.Wait()

	p := store.Snapshot().Profile
	for _, field := range Fields() {
		if p.Get(field) != string(field) {
			t.Errorf("Expected %s=%s, got %q", field, field, p.Get(field))
		}
	}
}

func TestListenersSeeMutationsInOrder(t *testing.T) {
	store := NewStore()
	revision := store.Snapshot().Revision

	started := make(chan struct{})
	gate := make(chan struct{})

	var mu sync.Mutex
	var latest State
	calls := 0
	store.Subscribe(func(state State) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			close(started)
			<-gate
		}

		mu.Lock()
		latest = state
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		store.SetField(FieldName, "first")
	}()

	<-started

	applied := make(chan bool, 1)
	go func() {
		defer wg.Done()
		applied <- store.ReplaceSummaryIf(revision, "generated")
	}()

	// Give the second mutation a chance to overtake the blocked delivery.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if !<-applied {
		t.Fatal("Expected generated summary to be applied")
	}

	mu.Lock()
	defer mu.Unlock()

	want := store.Snapshot()
	if latest != want {
		t.Errorf("Expected listener to end on %+v, got %+v", want, latest)
	}

	if latest.Profile.Summary != "generated" || latest.Profile.Name != "first" {
		t.Errorf("Unexpected final state %+v", latest.Profile)
	}
}
