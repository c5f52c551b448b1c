package scoring

import "testing"

func TestParseSectionsDocumentOrder(t *testing.T) {
	sections := ParseSections(threeSectionResponse)
	if len(sections) != 3 {
		t.Fatalf("ParseSections() returned %d sections, want 3", len(sections))
	}

	want := []struct {
		index int
		name  string
		value float64
	}{
		{1, "FORMATTING", 9.5},
		{2, "INTRODUCTION", 8},
		{3, "HYPOTHESIS", 10},
	}
	for i, w := range want {
		got := sections[i]
		if got.Index != w.index || got.Name != w.name || got.Value != w.value {
			t.Errorf("section[%d] = {%d %q %v}, want {%d %q %v}",
				i, got.Index, got.Name, got.Value, w.index, w.name, w.value)
		}
	}

	if sections[1].Body != "Objective stated but the balanced equation is missing state symbols." {
		t.Errorf("section[1].Body = %q", sections[1].Body)
	}
}

func TestParseSectionsToleratesDecoration(t *testing.T) {
	in := "* **4. Variables:** 6.5/10 - controls listed but not explained\n- 5. Procedures: 7/10\n"
	sections := ParseSections(in)
	if len(sections) != 2 {
		t.Fatalf("ParseSections() returned %d sections, want 2", len(sections))
	}
	if sections[0].Name != "Variables" || sections[0].Value != 6.5 {
		t.Errorf("section[0] = {%q %v}", sections[0].Name, sections[0].Value)
	}
	if sections[0].Body != "- controls listed but not explained" {
		t.Errorf("section[0].Body = %q", sections[0].Body)
	}
}

func TestParseSectionsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"prose only", "The report was excellent in every regard.", 0},
		{"score out of 100 not 10", "1. FORMATTING: 80/100\n", 0},
		{"missing index", "FORMATTING: 8/10\n", 0},
		{"out of order kept", "3. HYPOTHESIS: 9/10\nx\n1. FORMATTING: 8/10\ny\n", 2},
		{"duplicate index kept", "1. FORMATTING: 8/10\n1. FORMATTING: 9/10\n", 2},
		{"mid-line score ignored", "the score 2. INTRODUCTION: 8/10 appears inline", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSections(tt.in); len(got) != tt.want {
				t.Fatalf("ParseSections(%q) returned %d sections, want %d", tt.in, len(got), tt.want)
			}
		})
	}
}
