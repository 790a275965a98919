package refrange

import "testing"

func TestParseRangeDualBound(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		low, high float64
	}{
		{"hyphen", "12-16", 12, 16},
		{"spaced hyphen", "12 - 16", 12, 16},
		{"reversed order", "16-12", 12, 16},
		{"lowercase to", "150 to 400", 150, 400},
		{"uppercase to", "150 TO 400", 150, 400},
		{"en dash", "3.5–5.5", 3.5, 5.5},
		{"em dash", "3.5—5.5", 3.5, 5.5},
		{"negative low", "-2-4", -2, 4},
		{"decimals", "0.5-1.2", 0.5, 1.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRange(tc.input)
			if got.Low == nil || got.High == nil {
				t.Fatalf("ParseRange(%q) = %+v, expected both bounds", tc.input, got)
			}
			if *got.Low != tc.low || *got.High != tc.high {
				t.Fatalf("ParseRange(%q) = [%v, %v], want [%v, %v]", tc.input, *got.Low, *got.High, tc.low, tc.high)
			}
		})
	}
}

func TestParseRangeSingleBound(t *testing.T) {
	got := ParseRange("> 5")
	if got.Low == nil || *got.Low != 5 {
		t.Fatalf("ParseRange(\"> 5\") low = %v, want 5", got.Low)
	}
	if got.High != nil {
		t.Fatalf("ParseRange(\"> 5\") high = %v, want nil", *got.High)
	}

	got = ParseRange("<= 200")
	if got.High == nil || *got.High != 200 {
		t.Fatalf("ParseRange(\"<= 200\") high = %v, want 200", got.High)
	}
	if got.Low != nil {
		t.Fatalf("ParseRange(\"<= 200\") low = %v, want nil", *got.Low)
	}
}

func TestParseRangeBareNumbersFallback(t *testing.T) {
	got := ParseRange("normal between 60 and 100 approx")
	if got.Low == nil || got.High == nil {
		t.Fatalf("expected fallback to pick two bare numbers, got %+v", got)
	}
	if *got.Low != 60 || *got.High != 100 {
		t.Fatalf("fallback = [%v, %v], want [60, 100]", *got.Low, *got.High)
	}
}

func TestParseRangeUnclassifiable(t *testing.T) {
	for _, input := range []string{"", "negative", "see note", "N/A"} {
		got := ParseRange(input)
		if got.Low != nil || got.High != nil {
			t.Fatalf("ParseRange(%q) = %+v, want unclassifiable", input, got)
		}
	}
}

func TestClassifyBoundariesInclusive(t *testing.T) {
	r := ParseRange("12-16")

	cases := []struct {
		value float64
		want  string
	}{
		{11.999, FlagLow},
		{12, FlagNormal},
		{14, FlagNormal},
		{16, FlagNormal},
		{16.001, FlagHigh},
	}
	for _, tc := range cases {
		if got := r.Classify(tc.value); got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestClassifyOneSidedRangeIsUnclassifiable(t *testing.T) {
	r := ParseRange("> 5")
	for _, value := range []float64{4, 5, 6} {
		if got := r.Classify(value); got != "" {
			t.Fatalf("Classify(%v) on one-sided range = %q, want empty", value, got)
		}
	}
}

func TestComputeFlag(t *testing.T) {
	cases := []struct {
		name           string
		value          string
		referenceRange string
		want           string
	}{
		{"low", "11.2", "12 - 16", FlagLow},
		{"high", "420", "150-400", FlagHigh},
		{"normal", "14", "12-16", FlagNormal},
		{"boundary low", "12", "12-16", FlagNormal},
		{"boundary high", "16", "12-16", FlagNormal},
		{"non-numeric value", "abc", "12-16", ""},
		{"empty range", "14", "", ""},
		{"one-sided range", "14", "> 5", ""},
		{"padded value", " 14 ", "12-16", FlagNormal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeFlag(tc.value, tc.referenceRange); got != tc.want {
				t.Fatalf("ComputeFlag(%q, %q) = %q, want %q", tc.value, tc.referenceRange, got, tc.want)
			}
		})
	}
}
