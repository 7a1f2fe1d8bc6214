package vjson

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

var passCorpus = []string{
	`{}`,
	`[]`,
	`{"a":1}`,
	`[ 0, 1, -1, 1.1 ]`,
	`{"a":1,"b":2,"c":3}`,
	`"lonely string"`,
	`true`,
	`false`,
	`null`,
	`42`,
	`-17`,
	`3.14159`,
	`1e308`,
	`[[[[]]]]`,
	`{"nested":{"arrays":[[1,2],[3,4]],"and":{"objects":{"too":null}}}}`,
	`["Aé€😀"]`,
	`{"escaped\nkey":"escaped\tvalue"}`,
	`[1e-10, 1E+10, 0.5e5]`,
	`  {"leading":"whitespace"}  `,
	"\t[1,\n2,\r\n3]\t",
	`{"empty":"","blank":{},"none":[]}`,
	`[0.0, -0.5, 123456789.123456789]`,
	`{"unicode":"日本語テキスト"}`,
	`[{}, [], {"x":[{}]}]`,
}

var failCorpus = []string{
	``,
	`   `,
	`{`,
	`}`,
	`[`,
	`]`,
	`{]`,
	`[}`,
	`{"a"}`,
	`{"a":}`,
	`{"a":1,}`,
	`{,"a":1}`,
	`[1,]`,
	`[,1]`,
	`[1,,2]`,
	`{"a" "b"}`,
	`{'a':1}`,
	`{a:1}`,
	`["unclosed]`,
	`["mismatch"}`,
	`[1 2]`,
	`{"a":1 "b":2}`,
	`[+1]`,
	`[01]`,
	`[1.]`,
	`[.5]`,
	`[1e]`,
	`[-]`,
	`[0x1]`,
	`[1e309]`,
	`[truth]`,
	`[fals]`,
	`[nil]`,
	`["bad \x escape"]`,
	`["tab	insidestring"]`,
	`{} []`,
	`[1] extra`,
	`["a",`,
	`{"a":[}]`,
	"[\"line\nbreak\"]",
	"[\"\xc0\xaf\"]",
}

func TestConformance(t *testing.T) {
	for _, input := range passCorpus {
		if !Valid([]byte(input)) {
			t.Errorf("rejected valid document %q", input)
		}
	}
	for _, input := range failCorpus {
		if Valid([]byte(input)) {
			t.Errorf("accepted invalid document %q", input)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, input := range passCorpus {
		tape, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		min, err := Minify(tape)
		if err != nil {
			t.Fatalf("Minify(%q): %v", input, err)
		}
		again, err := Parse(min)
		if err != nil {
			t.Fatalf("reparse of %q (%q): %v", input, min, err)
		}
		if len(again.Entries) != len(tape.Entries) {
			t.Fatalf("%q: tape length changed %d → %d (%q)",
				input, len(tape.Entries), len(again.Entries), min)
		}
		for i := range tape.Entries {
			if tape.Entries[i] != again.Entries[i] {
				t.Fatalf("%q: tape entry %d changed %x → %x (%q)",
					input, i, tape.Entries[i], again.Entries[i], min)
			}
		}
		if !bytes.Equal(tape.Strings, again.Strings) {
			t.Fatalf("%q: string arena changed (%q)", input, min)
		}
	}
}

func TestIdempotence(t *testing.T) {
	p, err := NewParser(1<<16, DefaultMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	input := []byte(`{"a":[1,2.5,"x"],"b":null}`)

	first, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	entries := append([]uint64(nil), first.Entries...)
	arena := append([]byte(nil), first.Strings...)

	second, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Entries) != len(entries) || !bytes.Equal(second.Strings, arena) {
		t.Fatal("repeated parse differs")
	}
	for i := range entries {
		if second.Entries[i] != entries[i] {
			t.Fatalf("entry %d differs on reparse", i)
		}
	}

	// errors are stable too, and the parser stays reusable
	if _, err := p.Parse([]byte(`[1,`)); err != TapeError {
		t.Fatalf("first error = %v", err)
	}
	if _, err := p.Parse([]byte(`[1,`)); err != TapeError {
		t.Fatalf("second error = %v", err)
	}
	if _, err := p.Parse(input); err != nil {
		t.Fatalf("parser not reusable after error: %v", err)
	}
}

func TestPaddingTolerance(t *testing.T) {
	input := `{"a":[1,true,"x"]}`
	// the caller's allocation may carry arbitrary bytes past the end
	buf := make([]byte, len(input)+Padding)
	copy(buf, input)
	for i := len(input); i < len(buf); i++ {
		buf[i] = 0xff
	}
	tape, err := Parse(buf[:len(input)])
	if err != nil {
		t.Fatalf("Parse with clobbered padding: %v", err)
	}
	clean, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	for i := range clean.Entries {
		if clean.Entries[i] != tape.Entries[i] {
			t.Fatalf("entry %d differs with clobbered padding", i)
		}
	}
}

func TestDeepDocument(t *testing.T) {
	const depth = 1000
	input := strings.Repeat("[", depth) + strings.Repeat("]", depth)
	tape, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("deep document: %v", err)
	}
	pairs := 0
	for i := range tape.Entries {
		if tape.Tag(i) == TagArrayStart {
			end := int(tape.Payload(i))
			if tape.Tag(end) != TagArrayEnd || int(tape.Payload(end)) != i {
				t.Fatalf("unmatched pair at %d", i)
			}
			pairs++
		}
	}
	if pairs != depth {
		t.Errorf("pairs = %d, want %d", pairs, depth)
	}
}

func TestDepthLimit(t *testing.T) {
	p, err := NewParser(1<<16, 32)
	if err != nil {
		t.Fatal(err)
	}
	ok := strings.Repeat("[", 32) + strings.Repeat("]", 32)
	if _, err := p.Parse([]byte(ok)); err != nil {
		t.Errorf("depth at limit: %v", err)
	}
	over := strings.Repeat("[", 33) + strings.Repeat("]", 33)
	if _, err := p.Parse([]byte(over)); err != DepthError {
		t.Errorf("depth over limit: %v, want depth_error", err)
	}
}

func TestCapacity(t *testing.T) {
	p, err := NewParser(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse([]byte(`{"toolong":1}`)); err != Capacity {
		t.Errorf("oversized input: %v, want capacity", err)
	}
	if _, err := p.Parse([]byte(`[1,2]`)); err != nil {
		t.Errorf("parser unusable after capacity error: %v", err)
	}
}

func TestStages(t *testing.T) {
	p, err := NewParser(1<<12, DefaultMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Stage2(); err != Uninitialized {
		t.Errorf("Stage2 without Stage1: %v, want uninitialized", err)
	}
	if err := p.Stage1([]byte(`{"a":1}`), false); err != nil {
		t.Fatalf("Stage1: %v", err)
	}
	tape, err := p.Stage2()
	if err != nil {
		t.Fatalf("Stage2: %v", err)
	}
	if tape.Tag(1) != TagObjectStart {
		t.Errorf("tape entry 1 = %v", tape.Tag(1))
	}
	// a failed stage 1 resets readiness
	if err := p.Stage1([]byte(`"unclosed`), false); err != UnclosedString {
		t.Fatalf("Stage1 error = %v", err)
	}
	if _, err := p.Stage2(); err != Uninitialized {
		t.Errorf("Stage2 after failed Stage1: %v, want uninitialized", err)
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{``, Empty},
		{`[1,`, TapeError},
		{`[7,7,7,7,6,7,7,7,6,7,7,6,[7,7,7,7,6,7,7,7,6,7,7,6,7,7,7,7,7,7,6`, TapeError},
		{`nul`, NAtomError},
		{`tru`, TAtomError},
		{`fal`, FAtomError},
		{`[01]`, NumberError},
		{`1e309`, NumberError},
		{`"\q"`, StringError},
		{`"open`, UnclosedString},
		{"[\"\n\"]", UnescapedChars},
		{"\"\xff\"", UTF8Error},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if AsErrorCode(err) != tt.code {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, err, tt.code)
			}
		})
	}
}

func TestErrorCodeNames(t *testing.T) {
	names := map[ErrorCode]string{
		Success:                 "success",
		Capacity:                "capacity",
		Memalloc:                "memalloc",
		TapeError:               "tape_error",
		DepthError:              "depth_error",
		StringError:             "string_error",
		TAtomError:              "t_atom_error",
		FAtomError:              "f_atom_error",
		NAtomError:              "n_atom_error",
		NumberError:             "number_error",
		UTF8Error:               "utf8_error",
		Uninitialized:           "uninitialized",
		Empty:                   "empty",
		UnescapedChars:          "unescaped_chars",
		UnclosedString:          "unclosed_string",
		UnsupportedArchitecture: "unsupported_architecture",
		NoSuchField:             "no_such_field",
	}
	for code, want := range names {
		if code.String() != want {
			t.Errorf("code %d = %q, want %q", code, code.String(), want)
		}
	}
}

func TestLookup(t *testing.T) {
	tape, err := Parse([]byte(`{"error":[],"result":{"token":"xxx"},"n":-3}`))
	if err != nil {
		t.Fatal(err)
	}
	it, err := Lookup(tape, "n")
	if err != nil {
		t.Fatalf("Lookup(n): %v", err)
	}
	if v, err := it.Int(); err != nil || v != -3 {
		t.Errorf("n = %d, %v", v, err)
	}
	if it, err = Lookup(tape, "result"); err != nil {
		t.Fatalf("Lookup(result): %v", err)
	} else if it.Tag() != TagObjectStart {
		t.Errorf("result tag = %v", it.Tag())
	}
	if _, err := Lookup(tape, "missing"); err != NoSuchField {
		t.Errorf("Lookup(missing) = %v, want no_such_field", err)
	}
}

func TestIterWalk(t *testing.T) {
	tape, err := Parse([]byte(`{"s":"v","f":1.5,"b":true,"z":null,"u":7}`))
	if err != nil {
		t.Fatal(err)
	}
	it := NewIter(tape)
	if it.AdvanceInto() != TagRoot {
		t.Fatal("expected root")
	}
	if it.AdvanceInto() != TagObjectStart {
		t.Fatal("expected object")
	}
	// key, then value, at this level
	wantKeys := []string{"s", "f", "b", "z", "u"}
	for _, k := range wantKeys {
		if tag := it.Advance(); tag != TagString {
			t.Fatalf("key tag = %v", tag)
		}
		got, err := it.String()
		if err != nil || got != k {
			t.Fatalf("key = %q (%v), want %q", got, err, k)
		}
		it.Advance()
	}
	if it.Advance() != TagObjectEnd {
		t.Error("expected object end")
	}
}

func TestImplementationName(t *testing.T) {
	p, err := NewParser(64, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p.Implementation() == "" {
		t.Error("implementation name is empty")
	}
}

// TestConcurrentParsers checks that distinct parser instances are
// independent and that the pooled package-level entry points are safe
// to share between goroutines.
func TestConcurrentParsers(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{"name":"test","value":42}`),
		[]byte(`[1,2,3,4,5,6,7,8,9,10]`),
		[]byte(`{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`),
		[]byte(`{"data":"` + strings.Repeat("x", 200) + `"}`),
	}
	want := make([][]uint64, len(inputs))
	for i, in := range inputs {
		tape, err := Parse(in)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = append([]uint64(nil), tape.Entries...)
	}

	const goroutines = 8
	const iterations = 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			p, err := NewParser(1<<12, DefaultMaxDepth)
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < iterations; i++ {
				in := inputs[(g+i)%len(inputs)]
				ref := want[(g+i)%len(inputs)]

				// own instance
				tape, err := p.Parse(in)
				if err != nil {
					errs <- err
					return
				}
				if len(tape.Entries) != len(ref) {
					t.Errorf("goroutine %d: tape length differs", g)
					return
				}
				for k := range ref {
					if tape.Entries[k] != ref[k] {
						t.Errorf("goroutine %d: entry %d differs", g, k)
						return
					}
				}

				// shared pooled entry points
				if !Valid(in) {
					t.Errorf("goroutine %d: pooled Valid rejected %q", g, in)
					return
				}
				if _, err := Parse(in); err != nil {
					errs <- err
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewParserLimits(t *testing.T) {
	if _, err := NewParser(0, 8); err != Memalloc {
		t.Errorf("zero capacity: %v, want memalloc", err)
	}
	if _, err := NewParser(1, 0); err != Memalloc {
		t.Errorf("zero depth: %v, want memalloc", err)
	}
	if _, err := NewParser(MaxCapacity+1, 8); err != Capacity {
		t.Errorf("over max capacity: %v, want capacity", err)
	}
}
