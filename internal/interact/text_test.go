package interact

import (
	"reflect"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "tooltip",
			in: `<span class="name">Asset Name:</span><span class="value"> Pump &amp; Co</span><br/>` +
				`<span class="name">Replacement Value:</span><span class="value"> $1,250</span>`,
			want: []string{"Asset Name: Pump & Co", "Replacement Value: $1,250"},
		},
		{name: "plain", in: "hello", want: []string{"hello"}},
		{name: "empty", in: "", want: nil},
		{name: "blank lines", in: "a<br><br>b", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
