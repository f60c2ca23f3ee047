package model

import (
	"errors"
	"testing"
)

func TestSourceIdentity(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{NewSource(KindPriv, "MyBot", 5), "aopriv(MyBot)"},
		{NewSource(KindOrg, "", 5), "aoorg"},
		{Source{Kind: KindRelay, Name: "alliance", Label: "Alliance"}, "relay(alliance)"},
	}
	for _, tt := range tests {
		if got := tt.src.Identity(); got != tt.want {
			t.Errorf("Identity() = %q, want %q", got, tt.want)
		}
	}
}

func TestSourceSameHopIgnoresLabel(t *testing.T) {
	a := Source{Kind: KindOrg, Name: "MyOrg", Label: "Org"}
	b := Source{Kind: KindOrg, Name: "MyOrg"}
	if !a.SameHop(b) {
		t.Error("SameHop() = false for sources differing only in label")
	}
	c := Source{Kind: KindPriv, Name: "MyOrg"}
	if a.SameHop(c) {
		t.Error("SameHop() = true for different kinds")
	}
	if !a.SameHop(Source{Kind: KindOrg, Name: "myorg"}) {
		t.Error("SameHop() = false for names differing only in case")
	}
}

func TestCanonicalHop(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AOORG(Alliance)", "aoorg(Alliance)"},
		{" Relay ", "relay"},
		{"aopriv(MyBot)", "aopriv(MyBot)"},
		{"broken)", "broken)"},
	}
	for _, tt := range tests {
		if got := CanonicalHop(tt.in); got != tt.want {
			t.Errorf("CanonicalHop(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("aopriv(MyBot)")
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	if s.Kind != KindPriv || s.Name != "MyBot" {
		t.Errorf("ParseSource = %+v", s)
	}

	s, err = ParseSource("aoorg")
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	if s.Kind != KindOrg || s.Name != "" {
		t.Errorf("ParseSource = %+v", s)
	}

	if _, err := ParseSource("bogus(x)"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseSource(bogus) error = %v, want ErrUnknownKind", err)
	}
	if _, err := ParseSource("aoorg(x"); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("ParseSource(unterminated) error = %v, want ErrInvalidIdentity", err)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern  string
		identity string
		want     bool
	}{
		{"aopriv(*)", "aopriv(MyBot)", true},
		{"aopriv", "aopriv(MyBot)", true},
		{"aoorg", "aoorg", true},
		{"aoorg(*)", "aoorg", true},
		{"aoorg(MyOrg)", "aoorg", false},
		{"aoorg(MyOrg)", "aoorg(myorg)", true},
		{"relay(a*)", "relay(alliance)", true},
		{"relay(a*)", "relay(bots)", false},
		{"discord*", "discordpriv(123)", true},
		{"*", "web", true},
		{"aopriv", "aoorg(MyBot)", false},
		{"aopriv(", "aopriv(x)", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.identity, func(t *testing.T) {
			if got := MatchPattern(tt.pattern, tt.identity); got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.identity, got, tt.want)
			}
		})
	}
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr error
	}{
		{"aopriv(*)", nil},
		{"aoorg", nil},
		{"discord*", nil},
		{"relay(alliance)", nil},
		{"nosuchkind", ErrUnknownKind},
		{"aoorg()", ErrInvalidPattern},
		{"relay([)", ErrInvalidPattern},
		{"", ErrInvalidPattern},
	}
	for _, tt := range tests {
		err := ValidatePattern(tt.pattern)
		if tt.wantErr == nil && err != nil {
			t.Errorf("ValidatePattern(%q) unexpected error: %v", tt.pattern, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidatePattern(%q) error = %v, want %v", tt.pattern, err, tt.wantErr)
		}
	}
}

func TestEventPathIsCopyOnAppend(t *testing.T) {
	origin := NewSource(KindPriv, "MyBot", 5)
	ev := NewMessage(origin, &Character{Name: "Alice"}, "hello")

	a := ev.WithHop(NewSource(KindOrg, "MyBot", 5))
	b := ev.WithHop(NewSource(KindRelay, "alliance", 5))

	if ev.Len() != 1 {
		t.Fatalf("original Len() = %d, want 1", ev.Len())
	}
	if a.Hop(1).Kind != KindOrg || b.Hop(1).Kind != KindRelay {
		t.Errorf("clones share path storage: a=%v b=%v", a.Path(), b.Path())
	}

	a.Character.Name = "Mallory"
	if ev.Character.Name != "Alice" {
		t.Error("WithHop did not copy the character")
	}

	p := a.Path()
	p[0] = Source{}
	if a.Hop(0).Name != "MyBot" {
		t.Error("Path() exposed internal storage")
	}
}

func TestEventWithPrefix(t *testing.T) {
	local := NewSource(KindRelay, "alliance", 5)
	ev := NewMessage(local, nil, "hi").WithPrefix(
		NewSource(KindOrg, "Remote", 5),
		NewSource(KindPriv, "RemoteBot", 5),
	)

	if ev.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ev.Len())
	}
	origin, _ := ev.Origin()
	last, _ := ev.LastHop()
	pred, _ := ev.Predecessor()
	if origin.Name != "Remote" || last.Kind != KindRelay || pred.Name != "RemoteBot" {
		t.Errorf("path = %v", ev.Path())
	}
	if !ev.Visited(NewSource(KindOrg, "Remote", 0)) {
		t.Error("Visited() = false for a prefixed hop")
	}
}

func TestUserStatePayload(t *testing.T) {
	ev := NewUserState(NewSource(KindOrg, "MyOrg", 5), &Character{Name: "Bob"}, true)
	us, ok := ev.UserState()
	if !ok || !us.Online {
		t.Errorf("UserState() = %+v, %v", us, ok)
	}
	if _, ok := NewMessage(NewSource(KindOrg, "", 5), nil, "x").UserState(); ok {
		t.Error("UserState() ok for a message event")
	}
}

func TestRouteValidate(t *testing.T) {
	if err := NewRoute("aopriv(*)", "aoorg", false).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := NewRoute("aopriv(*)", "nowhere", false).Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Validate() error = %v, want ErrUnknownKind", err)
	}
}

func TestRouteEqualIgnoresID(t *testing.T) {
	a := NewRoute("aopriv(*)", "aoorg", true)
	b := NewRoute("AOPRIV(*)", "aoorg", true)
	if a.ID == b.ID {
		t.Fatal("NewRoute reused an id")
	}
	if !a.Equal(b) {
		t.Error("Equal() = false for identical routes")
	}
	if a.Equal(NewRoute("aopriv(*)", "aoorg", false)) {
		t.Error("Equal() = true for different direction")
	}
}

func TestHopFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  HopFormat
		src     Source
		want    string
		wantErr bool
	}{
		{"placeholder", HopFormat{Hop: "aoorg", Render: true, Format: "Org %s"}, Source{Kind: KindOrg, Name: "X"}, "Org X", false},
		{"label wins", HopFormat{Hop: "aoorg", Render: true, Format: "%s"}, Source{Kind: KindOrg, Name: "X", Label: "Lbl"}, "Lbl", false},
		{"literal", HopFormat{Hop: "web", Render: true, Format: "Web"}, Source{Kind: KindWeb}, "Web", false},
		{"unnamed hop", HopFormat{Hop: "web", Render: true, Format: "Web %s"}, Source{Kind: KindWeb}, "Web", false},
		{"empty format", HopFormat{Hop: "aopriv", Render: true}, Source{Kind: KindPriv, Name: "Bot"}, "Bot", false},
		{"percent escape", HopFormat{Hop: "aopriv", Render: true, Format: "100%% %s"}, Source{Kind: KindPriv, Name: "Bot"}, "100% Bot", false},
		{"two placeholders", HopFormat{Hop: "aoorg", Format: "%s %s"}, Source{}, "", true},
		{"bad verb", HopFormat{Hop: "aoorg", Format: "%d"}, Source{}, "", true},
		{"unknown kind", HopFormat{Hop: "nope", Format: "%s"}, Source{}, "", true},
		{"glob hop", HopFormat{Hop: "aoorg(*)", Format: "%s"}, Source{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if got := tt.format.Apply(tt.src); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHopColorValidate(t *testing.T) {
	if err := (HopColor{Hop: "aoorg", TagColor: "FFCC00", TextColor: "00ff00"}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (HopColor{Hop: "aoorg", TagColor: "#FFCC00"}).Validate(); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("Validate() error = %v, want ErrInvalidColor", err)
	}
}
