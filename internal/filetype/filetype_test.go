package filetype

import "testing"

func TestFromFilenameKnownExtensions(t *testing.T) {
	cases := map[string]Tag{
		"report.pdf":    PDF,
		"REPORT.PDF":    PDF,
		"memo.doc":      Word,
		"memo.docx":     Word,
		"budget.xls":    Excel,
		"budget.xlsx":   Excel,
		"notes.txt":     Text,
		"readme.md":     Text,
		"ledger.csv":    Text,
		"archive.tar.gz.pdf": PDF,
	}
	for name, want := range cases {
		got, ok := FromFilename(name)
		if !ok {
			t.Fatalf("FromFilename(%q) reported unsupported", name)
		}
		if got != want {
			t.Fatalf("FromFilename(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFromFilenameRejectsUnsupportedExtension(t *testing.T) {
	if _, ok := FromFilename("payload.exe"); ok {
		t.Fatal("FromFilename accepted an unsupported extension")
	}
	if _, ok := FromFilename("noextension"); ok {
		t.Fatal("FromFilename accepted a filename with no extension")
	}
}

func TestValid(t *testing.T) {
	for _, tag := range []Tag{PDF, Word, Excel, Text} {
		if !Valid(tag) {
			t.Fatalf("Valid(%q) = false, want true", tag)
		}
	}
	if Valid(Tag("exe")) {
		t.Fatal("Valid(\"exe\") = true, want false")
	}
}
