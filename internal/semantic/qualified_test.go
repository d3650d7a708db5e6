package semantic

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Name
		wantErr bool
	}{
		{
			name:  "namespace and type",
			input: "Microsoft.VisualStudio.Shell.Package",
			want:  Name{Namespace: "Microsoft.VisualStudio.Shell", Type: "Package"},
		},
		{
			name:  "global namespace",
			input: "Package",
			want:  Name{Type: "Package"},
		},
		{
			name:  "global alias prefix",
			input: "global::System.Object",
			want:  Name{Namespace: "System", Type: "Object"},
		},
		{
			name:  "backtick arity",
			input: "System.Collections.Generic.Dictionary`2",
			want:  Name{Namespace: "System.Collections.Generic", Type: "Dictionary", Arity: 2},
		},
		{
			name:  "type parameter list",
			input: "System.Collections.Generic.Dictionary<TKey, TValue>",
			want:  Name{Namespace: "System.Collections.Generic", Type: "Dictionary", Arity: 2},
		},
		{
			name:    "empty",
			input:   "  ",
			wantErr: true,
		},
		{
			name:    "empty segment",
			input:   "System..Object",
			wantErr: true,
		},
		{
			name:    "bad arity",
			input:   "List`x",
			wantErr: true,
		},
		{
			name:    "leading digit",
			input:   "System.1Object",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNameFullName(t *testing.T) {
	tests := []struct {
		name Name
		want string
	}{
		{Name{Namespace: "System", Type: "Object"}, "System.Object"},
		{Name{Type: "Package"}, "Package"},
		{Name{Namespace: "System.Collections.Generic", Type: "List", Arity: 1}, "System.Collections.Generic.List`1"},
	}

	for _, tt := range tests {
		if got := tt.name.FullName(); got != tt.want {
			t.Errorf("%+v.FullName() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNameMatches(t *testing.T) {
	sym := newSymbol("Package", 0, SymbolClass, "Microsoft.VisualStudio.Shell", nil)

	if !MustParseName("Microsoft.VisualStudio.Shell.Package").Matches(sym) {
		t.Error("expected full name to match")
	}
	if MustParseName("Package").Matches(sym) {
		t.Error("simple name must not match a namespaced symbol")
	}
	if (Name{}).Matches(sym) {
		t.Error("zero name must not match")
	}
	if MustParseName("System.Object").Matches(nil) {
		t.Error("nil symbol must not match")
	}
}
