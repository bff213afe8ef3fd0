package attribution

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/linkforty/go-linkforty/pkg/domain"
)

func decodeReport(t *testing.T, body string) *domain.InstallReport {
	t.Helper()
	var report domain.InstallReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &report
}

func TestNormalizeDeferredFieldNames(t *testing.T) {
	want := map[string]string{"route": "A", "id": "1"}
	bodies := []string{
		`{"attributed":true,"deepLinkData":{"shortCode":"x","deepLinkParameters":{"route":"A","id":"1"}}}`,
		`{"attributed":true,"deepLinkData":{"shortCode":"x","customParameters":{"route":"A","id":"1"}}}`,
	}
	for _, body := range bodies {
		got := NormalizeDeferred(decodeReport(t, body))
		if got == nil || got.ShortCode != "x" {
			t.Fatalf("%s: unexpected %+v", body, got)
		}
		if !reflect.DeepEqual(got.CustomParameters, want) {
			t.Fatalf("%s: custom parameters %v, want %v", body, got.CustomParameters, want)
		}
	}
}

func TestNormalizeDeferredPrecedence(t *testing.T) {
	cases := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "deep link parameters win",
			body: `{"attributed":true,"deepLinkData":{"shortCode":"x","customParameters":{"a":"1"},"deepLinkParameters":{"b":"2"}}}`,
			want: map[string]string{"b": "2"},
		},
		{
			name: "present but empty still wins",
			body: `{"attributed":true,"deepLinkData":{"shortCode":"x","customParameters":{"a":"1"},"deepLinkParameters":{}}}`,
			want: map[string]string{},
		},
		{
			name: "neither present",
			body: `{"attributed":true,"deepLinkData":{"shortCode":"x"}}`,
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeDeferred(decodeReport(t, tc.body))
			if got == nil {
				t.Fatalf("expected data")
			}
			if !reflect.DeepEqual(got.CustomParameters, tc.want) {
				t.Fatalf("custom parameters %#v, want %#v", got.CustomParameters, tc.want)
			}
		})
	}
}

func TestNormalizeDeferredOrganic(t *testing.T) {
	if got := NormalizeDeferred(decodeReport(t, `{"attributed":false}`)); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := NormalizeDeferred(decodeReport(t, `{"attributed":false,"deepLinkData":{"shortCode":"x"}}`)); got != nil {
		t.Fatalf("expected nil for unattributed payload, got %+v", got)
	}
	if got := NormalizeDeferred(decodeReport(t, `{"attributed":true}`)); got != nil {
		t.Fatalf("expected nil without payload, got %+v", got)
	}
	if got := NormalizeDeferred(nil); got != nil {
		t.Fatalf("expected nil for nil report, got %+v", got)
	}
}

func TestNormalizeDeferredRequiresShortCode(t *testing.T) {
	bodies := []string{
		`{"attributed":true,"deepLinkData":{}}`,
		`{"attributed":true,"deepLinkData":{"shortCode":"","deepLinkParameters":{"route":"A"}}}`,
		`{"attributed":true,"deepLinkData":{"customParameters":{"route":"A"}}}`,
	}
	for _, body := range bodies {
		if got := NormalizeDeferred(decodeReport(t, body)); got != nil {
			t.Fatalf("%s: expected nil without short code, got %+v", body, got)
		}
	}
	report := &domain.InstallReport{Attributed: true, DeepLinkData: &domain.DeferredPayload{}}
	if got := NormalizeDeferred(report); got != nil {
		t.Fatalf("expected nil for empty payload, got %+v", got)
	}
}

func TestNormalizeDeferredDoesNotAlias(t *testing.T) {
	report := decodeReport(t, `{"attributed":true,"deepLinkData":{"shortCode":"x","deepLinkParameters":{"route":"A"}}}`)
	got := NormalizeDeferred(report)
	got.CustomParameters["route"] = "B"
	if report.DeepLinkData.DeepLinkParameters["route"] != "A" {
		t.Fatalf("normalization must copy parameters")
	}
}
