package parser

import (
	"testing"

	"xrfc/pkg/ir"
)

func TestParseWellFormed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ir.Op
	}{
		{
			name:  "single chunk",
			input: "50001",
			want:  []ir.Op{ir.Inc, ir.Input, ir.Input, ir.Input, ir.Output},
		},
		{
			name:  "two chunks whitespace separated",
			input: "50001 BBBBB",
			want:  []ir.Op{ir.Inc, ir.Input, ir.Input, ir.Input, ir.Output},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, errs := Parse(tt.input)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(chunks) == 0 {
				t.Fatalf("expected at least one chunk")
			}
			got := make([]ir.Op, len(chunks[0].Commands))
			for i, c := range chunks[0].Commands {
				got[i] = c.Op
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v commands, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("command %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseTooManyCommands(t *testing.T) {
	_, errs := Parse("500011")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0].Line != 1 || errs[0].Col != 1 {
		t.Errorf("error position = %d:%d, want 1:1", errs[0].Line, errs[0].Col)
	}
}

func TestParseNotEnoughCommands(t *testing.T) {
	_, errs := Parse("500")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
}

func TestParseInvalidCharacter(t *testing.T) {
	// "5000G" leaves only 4 valid commands, so the invalid-character error
	// is followed by a too-short error for the token.
	_, errs := Parse("5000G")
	if len(errs) != 2 {
		t.Fatalf("expected exactly two errors, got %v", errs)
	}
	want := "Invalid command character: G"
	if errs[0].Msg != want {
		t.Errorf("msg = %q, want %q", errs[0].Msg, want)
	}
	if errs[0].Col != 5 {
		t.Errorf("col = %d, want 5", errs[0].Col)
	}
	if errs[1].Msg != "doesn't have enough commands" {
		t.Errorf("second msg = %q, want the too-short error", errs[1].Msg)
	}
}

func TestParseLowercaseIsInvalid(t *testing.T) {
	// The rejected 'f' also leaves the token one valid command short.
	_, errs := Parse("5000f")
	if len(errs) != 2 {
		t.Fatalf("expected lowercase hex digit to be rejected, got errs=%v", errs)
	}
}

func TestParseOnlyReturnsChunksWhenNoErrors(t *testing.T) {
	chunks, errs := Parse("500 BBBBB")
	if len(errs) == 0 {
		t.Fatalf("expected an error for the short token")
	}
	if chunks != nil {
		t.Errorf("expected nil chunks when errors are present, got %v", chunks)
	}
}

func TestParseMultilinePositions(t *testing.T) {
	// The invalid 'G' and the too-short token both sit at line 2, column 1.
	_, errs := Parse("BBBBB\nG0001")
	if len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
	if errs[0].Line != 2 || errs[0].Col != 1 {
		t.Errorf("position = %d:%d, want 2:1", errs[0].Line, errs[0].Col)
	}
}

func TestParseInvalidCharacterDoesNotAlsoReportLengthWhenValidCountMatches(t *testing.T) {
	// "0G1234" is 6 raw characters but only 5 valid commands once the
	// invalid 'G' is discounted - the length check passes on that valid
	// count, so only the invalid-character error is reported.
	_, errs := Parse("0G1234")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	want := "Invalid command character: G"
	if errs[0].Msg != want {
		t.Errorf("msg = %q, want %q", errs[0].Msg, want)
	}
	if errs[0].Line != 1 || errs[0].Col != 2 {
		t.Errorf("position = %d:%d, want 1:2", errs[0].Line, errs[0].Col)
	}
}

func TestParseInvalidCharacterStillReportsLengthWhenValidCountAlsoMismatches(t *testing.T) {
	// "G123" has 1 invalid character and only 3 valid commands, so both
	// the invalid-character error and the too-short error fire.
	_, errs := Parse("G123")
	if len(errs) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}
}

func TestParseStopsCollectingAfterMaxErrors(t *testing.T) {
	// Each "000000" token is 6 valid digits, one over K=5, so it
	// contributes exactly one "too many commands" error.
	src := ""
	for i := 0; i < 150; i++ {
		if i > 0 {
			src += " "
		}
		src += "000000"
	}
	_, errs := Parse(src)
	if len(errs) != 101 {
		t.Fatalf("expected 100 collected errors plus the cap notice, got %d", len(errs))
	}
	last := errs[len(errs)-1]
	if last.Msg != "Too many errors, quitting." {
		t.Errorf("last message = %q, want cap notice", last.Msg)
	}
	if last.Error() != "Too many errors, quitting." {
		t.Errorf("cap notice Error() = %q, want unprefixed verbatim text", last.Error())
	}
}
