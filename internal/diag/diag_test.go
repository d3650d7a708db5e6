package diag

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{input: "hidden", want: SeverityHidden},
		{input: "Info", want: SeverityInfo},
		{input: "warning", want: SeverityWarning},
		{input: " error ", want: SeverityError},
		{input: "fatal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeverity(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeverity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDescriptorValidate(t *testing.T) {
	valid := Descriptor{ID: "VSSDK001", MessageFormat: "m", DefaultSeverity: SeverityInfo}

	tests := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Descriptor) {}},
		{name: "empty id", mutate: func(d *Descriptor) { d.ID = "" }, wantErr: true},
		{name: "leading digit", mutate: func(d *Descriptor) { d.ID = "1ABC" }, wantErr: true},
		{name: "punctuation", mutate: func(d *Descriptor) { d.ID = "VS-001" }, wantErr: true},
		{name: "no message", mutate: func(d *Descriptor) { d.MessageFormat = "" }, wantErr: true},
		{name: "bad severity", mutate: func(d *Descriptor) { d.DefaultSeverity = 9 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if err := d.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	d := &Descriptor{ID: "X1", MessageFormat: "Rule '%s' failed: %v"}
	if got := New(d, Location{}, "r", "boom").Message(); got != "Rule 'r' failed: boom" {
		t.Errorf("Message() = %q", got)
	}

	plain := &Descriptor{ID: "X2", MessageFormat: "100% literal"}
	if got := New(plain, Location{}).Message(); got != "100% literal" {
		t.Errorf("Message() without args = %q", got)
	}
}

func TestNewLocation(t *testing.T) {
	u := syntax.NewUnit("a.cs", []byte("class A\n  : Package { }"), nil)
	loc := NewLocation(u, syntax.Span{Start: 12, End: 19})

	want := Location{
		Path:  "a.cs",
		Span:  syntax.Span{Start: 12, End: 19},
		Start: syntax.Position{Line: 2, Column: 5},
		End:   syntax.Position{Line: 2, Column: 12},
	}
	if diff := cmp.Diff(want, loc); diff != "" {
		t.Errorf("NewLocation() mismatch (-want +got):\n%s", diff)
	}
}

func TestSort(t *testing.T) {
	a := &Descriptor{ID: "A1", MessageFormat: "a"}
	b := &Descriptor{ID: "B1", MessageFormat: "b"}
	at := func(path string, start uint32) Location {
		return Location{Path: path, Span: syntax.Span{Start: start, End: start + 1}}
	}

	ds := []Diagnostic{
		{Descriptor: b, Severity: SeverityInfo, Location: at("b.cs", 0)},
		{Descriptor: b, Severity: SeverityInfo, Location: at("a.cs", 5)},
		{Descriptor: a, Severity: SeverityInfo, Location: at("a.cs", 5)},
		{Descriptor: a, Severity: SeverityError, Location: at("a.cs", 5)},
		{Descriptor: a, Severity: SeverityInfo, Location: at("a.cs", 1)},
	}
	Sort(ds)

	var got []string
	for _, d := range ds {
		got = append(got, d.Location.Path+":"+d.Severity.String()+":"+d.ID()+":"+string(rune('0'+d.Location.Span.Start)))
	}
	want := []string{
		"a.cs:info:A1:1",
		"a.cs:error:A1:5",
		"a.cs:info:A1:5",
		"a.cs:info:B1:5",
		"b.cs:info:B1:0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}

	if sev, ok := Max(ds); !ok || sev != SeverityError {
		t.Errorf("Max() = %v, %v", sev, ok)
	}
	if _, ok := Max(nil); ok {
		t.Error("Max(nil) should report false")
	}
}

func TestSinkConcurrentAdd(t *testing.T) {
	var s Sink
	d := &Descriptor{ID: "A1", MessageFormat: "a"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(New(d, Location{}))
			}
		}()
	}
	wg.Wait()

	if got := s.Len(); got != 800 {
		t.Errorf("Len() = %d, want 800", got)
	}
	items := s.Items()
	items[0].Descriptor = nil
	if s.Items()[0].Descriptor == nil {
		t.Error("Items() must return a copy")
	}
}

func TestMetaDescriptorsAreValid(t *testing.T) {
	for _, d := range MetaDescriptors() {
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", d.ID, err)
		}
	}
}
