package library

import "testing"

func TestAssetRefConstructors(t *testing.T) {
	tests := []struct {
		name     string
		ref      AssetRef
		wantKind AssetKind
		empty    bool
	}{
		{"local path", LocalRef("assets/avatars/a.png"), AssetLocal, false},
		{"empty local", LocalRef(""), AssetNone, true},
		{"remote url", RemoteRef("https://store.example/avatars/a.png"), AssetRemote, false},
		{"empty remote", RemoteRef(""), AssetNone, true},
		{"zero value", AssetRef{}, AssetNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ref.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", tt.ref.Kind, tt.wantKind)
			}
			if tt.ref.IsEmpty() != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", tt.ref.IsEmpty(), tt.empty)
			}
		})
	}
}
