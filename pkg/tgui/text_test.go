package tgui

import "testing"

func TestHeadRunes(t *testing.T) {
	t.Parallel()
	if got := HeadRunes("gazette", 3); got != "gaz" {
		t.Fatalf("HeadRunes = %q", got)
	}
	if got := HeadRunes("日本語テキスト", 3); got != "日本語" {
		t.Fatalf("HeadRunes multibyte = %q", got)
	}
	if got := HeadRunes("ab", 5); got != "ab" {
		t.Fatalf("HeadRunes short = %q", got)
	}
}

func TestLinkEscapes(t *testing.T) {
	t.Parallel()
	got := Link(`S 12 <Special>`, `https://example.org/a.pdf?x=1&y="2"`)
	want := `<a href="https://example.org/a.pdf?x=1&amp;y=&#34;2&#34;">S 12 &lt;Special&gt;</a>`
	if got.String() != want {
		t.Fatalf("Link = %s\nwant %s", got, want)
	}
}

func TestBulletsSkipsBlank(t *testing.T) {
	t.Parallel()
	got := Bullets(Esc("a"), "", Esc("b"))
	if got != "• a\n• b" {
		t.Fatalf("Bullets = %q", got)
	}
}
