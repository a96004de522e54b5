package locationmatcher

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/matcher"
	"github.com/questhunt/location-matcher/pkg/types"
)

type fakeClient struct {
	calls     int
	lastImage []byte
	result    *types.MatchResult
}

func (f *fakeClient) MatchLocation(ctx context.Context, system string, image []byte, opts client.MatchOptions) (*types.MatchResult, error) {
	f.calls++
	f.lastImage = image
	return f.result, nil
}

func (f *fakeClient) Describe(ctx context.Context, model, prompt string, image []byte) (string, error) {
	return "a test scene", nil
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	m := New(catalogue.Default(), &fakeClient{}, Options{Model: "test"})
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.Catalogue().Size() != 7 {
		t.Errorf("Expected the 7-entry catalogue, got %d", m.Catalogue().Size())
	}
}

func TestMatch(t *testing.T) {
	fake := &fakeClient{result: &types.MatchResult{LocationIndex: 3, Confidence: types.ConfidenceHigh}}
	m := New(catalogue.Default(), fake, Options{Model: "test"})

	result, err := m.Match(context.Background(), testJPEG(t, 64, 64))
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if result.LocationIndex != 3 || result.Confidence != types.ConfidenceHigh {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestMatchPreprocessesWhenConfigured(t *testing.T) {
	fake := &fakeClient{result: &types.MatchResult{LocationIndex: types.NoMatch, Confidence: types.ConfidenceLow}}
	m := New(catalogue.Default(), fake, Options{Model: "test", SendMaxDim: 32})

	original := testJPEG(t, 400, 300)
	if _, err := m.Match(context.Background(), original); err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if bytes.Equal(fake.lastImage, original) {
		t.Error("Expected the provider to receive a re-encoded image")
	}
	if len(fake.lastImage) >= len(original) {
		t.Errorf("Expected a smaller send: got %d bytes from %d", len(fake.lastImage), len(original))
	}
}

func TestMatchRejectsInvalidPayload(t *testing.T) {
	fake := &fakeClient{result: &types.MatchResult{LocationIndex: 0, Confidence: types.ConfidenceHigh}}
	m := New(catalogue.Default(), fake, Options{Model: "test", SendMaxDim: 1536})

	if _, err := m.Match(context.Background(), []byte("not an image")); !errors.Is(err, matcher.ErrPayloadInvalid) {
		t.Errorf("Expected ErrPayloadInvalid, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("Provider was called %d times for an invalid payload", fake.calls)
	}
}

func TestMatchSource(t *testing.T) {
	fake := &fakeClient{result: &types.MatchResult{LocationIndex: 1, Confidence: types.ConfidenceMedium}}
	m := New(catalogue.Default(), fake, Options{Model: "test"})

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, testJPEG(t, 64, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := m.MatchSource(context.Background(), path)
	if err != nil {
		t.Fatalf("MatchSource failed: %v", err)
	}
	if result.LocationIndex != 1 {
		t.Errorf("Expected index 1, got %d", result.LocationIndex)
	}
}

func TestMatchSourceMissingFile(t *testing.T) {
	m := New(catalogue.Default(), &fakeClient{}, Options{Model: "test"})

	if _, err := m.MatchSource(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("MatchSource should fail for a missing file")
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %s, expected %s", GetVersion(), Version)
	}
}
