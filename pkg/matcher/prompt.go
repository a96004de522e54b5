package matcher

import (
	"fmt"
	"strings"

	"github.com/questhunt/location-matcher/pkg/catalogue"
)

// promptHeader states the matching policy. The strictness wording is part of
// the functional contract: weakening it raises the false-positive rate, since
// the underlying model is prompted, not fine-tuned.
const promptHeader = `You are an expert at analyzing and matching travel quest location images. Respond ONLY with structured JSON indicating whether the user's image matches any of the reference locations.

STRICT MATCHING POLICY:
- Only mark a location as matched if the user's image FULLY and CLEARLY depicts the exact same physical location, object, or scene as one of the reference quest locations.
- Do NOT accept images that are merely nearby, similar, or show a related area. The match must be unmistakable and all key features must align.
- Reject partial, approximate, or ambiguous matches. If there is any doubt, return -1 for no match.
- The user's image must show the same main subject, from a similar angle and perspective, with matching distinctive features, context, and environment.
- Ignore images that are close but do not fully fit ALL criteria.

Look for:
- Identical landmarks, buildings, or distinctive architectural features
- Matching viewing angles, perspectives, and compositions
- The same environmental context, lighting, and setting
- Recognizable signage, decorations, or unique elements that are clearly present in both images
- The same objects, people, or activities in the scene

REFERENCE QUEST LOCATION DESCRIPTIONS TO COMPARE AGAINST:`

// DescribePrompt asks the model for a reusable reference description of a
// location photo. Used by cmd/quest-descgen to regenerate the catalogue.
const DescribePrompt = `Generate a detailed description of this location. Focus on unique, identifying features. This description will be used to match user-submitted photos.`

// BuildPrompt renders the system instruction: the matching policy followed by
// every catalogue location as "Index - i. Name - Description". The indices in
// the prompt are the indices the model answers with, so the prompt and the
// validation below always see the same catalogue version.
func BuildPrompt(cat *catalogue.Catalogue) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for i, loc := range cat.All() {
		b.WriteString(fmt.Sprintf("\nIndex - %d. %s - %s", i, loc.Name, loc.Description))
	}
	return b.String()
}
