package textutil

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "track", "track"},
		{"spaces", "My Great Song", "my_great_song"},
		{"punctuation runs", "song (live!) - remix", "song_live_remix"},
		{"camel case", "myTrackV2", "my_track_v2"},
		{"acronym preserved", "HTTPSong", "httpsong"},
		{"digits before upper", "take2Mix", "take2_mix"},
		{"leading trailing junk", "--hello--", "hello"},
		{"accented letters fold", "Beyoncé - Héros", "beyonce_heros"},
		{"whitespace only", "   ", "track"},
		{"empty", "", "track"},
		{"all punctuation", "!!!", "track"},
		{"mixed unicode", "Café del Mar", "cafe_del_mar"},
		{"underscores kept single", "a__b", "a_b"},
		{"already slugged", "my_track_v2", "my_track_v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugIdempotent(t *testing.T) {
	inputs := []string{"My Great Song", "myTrackV2", "Beyoncé", "  spaced out  ", "!!!"}
	for _, input := range inputs {
		once := Slug(input)
		if twice := Slug(once); twice != once {
			t.Errorf("Slug not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}
