package circles

import "testing"

func TestIsValidName(t *testing.T) {
	for _, name := range AllNames {
		if !IsValidName(name) {
			t.Errorf("IsValidName(%q) = false", name)
		}
	}
	for _, name := range []Name{"", "family", "Enemies"} {
		if IsValidName(name) {
			t.Errorf("IsValidName(%q) = true", name)
		}
	}
}

func TestTraitsFor(t *testing.T) {
	for _, name := range AllNames {
		traits := TraitsFor(name)
		if len(traits) != 5 {
			t.Errorf("TraitsFor(%q) has %d traits, want 5", name, len(traits))
		}
		for _, trait := range traits {
			if _, ok := TraitDefinitions[trait]; !ok {
				t.Errorf("trait %q of %q has no definition", trait, name)
			}
		}
	}
}

func TestHasTrait(t *testing.T) {
	tests := []struct {
		name  Name
		trait string
		want  bool
	}{
		{Family, "Caring", true},
		{Work, "Punctual", true},
		{Friends, "Loyal", true},
		{General, "Observant", true},
		{Work, "Caring", false},
		{Family, "punctual", false},
		{General, "", false},
	}
	for _, tt := range tests {
		if got := HasTrait(tt.name, tt.trait); got != tt.want {
			t.Errorf("HasTrait(%q, %q) = %v, want %v", tt.name, tt.trait, got, tt.want)
		}
	}
}

func TestIsPrivacyProtected(t *testing.T) {
	if IsPrivacyProtected(Family) {
		t.Error("Family circles should not be privacy protected")
	}
	for _, name := range []Name{Work, Friends, General} {
		if !IsPrivacyProtected(name) {
			t.Errorf("IsPrivacyProtected(%q) = false", name)
		}
	}
}
