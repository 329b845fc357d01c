package naming

import "testing"

func TestParseVideoName(t *testing.T) {
	cases := []struct {
		name   string
		stem   string
		wantOK bool
		want   VideoName
	}{
		{name: "basic", stem: "video05del11numero3", wantOK: true, want: VideoName{Day: 5, Month: 11, Sequence: 3}},
		{name: "multi-digit sequence", stem: "video01del03numero12", wantOK: true, want: VideoName{Day: 1, Month: 3, Sequence: 12}},
		{name: "surrounding text", stem: "intro_video31del12numero1_final", wantOK: true, want: VideoName{Day: 31, Month: 12, Sequence: 1}},
		{name: "leading zero sequence", stem: "video10del10numero007", wantOK: true, want: VideoName{Day: 10, Month: 10, Sequence: 7}},
		{name: "no range check", stem: "video99del00numero0", wantOK: true, want: VideoName{Day: 99, Month: 0, Sequence: 0}},
		{name: "no match", stem: "clip_final", wantOK: false},
		{name: "single digit day", stem: "video5del11numero3", wantOK: false},
		{name: "missing sequence", stem: "video05del11numero", wantOK: false},
		{name: "empty", stem: "", wantOK: false},
		{name: "sequence overflow", stem: "video01del01numero99999999999999999999999", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseVideoName(tc.stem)
			if ok != tc.wantOK {
				t.Fatalf("ParseVideoName(%q) ok = %v, want %v", tc.stem, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Errorf("ParseVideoName(%q) = %+v, want %+v", tc.stem, got, tc.want)
			}
		})
	}
}
