package lang

import (
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".js", "javascript"},
		{".jsx", "javascript"},
		{".JSX", "javascript"},
		{".ts", "typescript"},
		{".tsx", "tsx"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	if l := ForPath("src/components/Button.react.js"); l == nil || l.Name != "javascript" {
		t.Errorf("ForPath(.js) = %v, want javascript", l)
	}
	if l := ForPath("Makefile"); l != nil {
		t.Errorf("ForPath(Makefile) = %v, want nil", l)
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"javascript", "typescript", "tsx"} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if l.GetLanguage() == nil {
			t.Errorf("%s language is nil", name)
		}
	}
	if Languages["javascript"].TypeCasts {
		t.Error("javascript grammar has no `as` casts")
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Languages["javascript"].NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestGetQuery(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"javascript", "typescript", "tsx"} {
		q, err := Languages[name].GetQuery()
		if err != nil {
			t.Fatalf("%s GetQuery: %v", name, err)
		}
		if q == nil {
			t.Fatalf("%s query is nil", name)
		}
	}
}
