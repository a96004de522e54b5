package catalogue

import "github.com/questhunt/location-matcher/pkg/types"

// defaultLocations is the catalogue of the original quest deployment.
// Descriptions were generated from reference photos with a vision model
// (see cmd/quest-descgen) and then hand-tuned to discriminate against
// visually similar nearby scenes.
var defaultLocations = []types.Location{
	{
		Name: "Cafe Truck",
		Description: `This image features a paved park path with a unique, cream-colored three-wheeled "Arena Cafe" vehicle in the foreground, followed by a red Mercedes-Benz food truck. The background reveals a grassy area with people relaxing under trees, and a dense line of trees under a clear sky. The overall scene suggests a pleasant outdoor food vendor setup within a park setting.`,
		Images: []string{"images/cafe-truck/1.jpg", "images/cafe-truck/2.jpg"},
	},
	{
		Name: "Coffee Break Lemur",
		Description: `This image universally features a stylized, lemur-like cardboard cutout holding a "COFFEE BREAK" sign, set against a light-colored wall with purple lighting. Key fixed elements include a bright red door with a crash bar, a red fire extinguisher box, and the dark, tiered seating of what appears to be a stadium or arena in the background.`,
		Images: []string{"images/coffee-break-lemur/1.jpg", "images/coffee-break-lemur/2.jpg"},
	},
	{
		Name: "Partners Zone Lemur",
		Description: `A purple and white cartoon lemur cutout holds a "PARTNERS ZONE" sign, prominently featuring its large, stylized eyes and ringed tail. This unique mascot stands on a green floor next to a grey pillar, with a person partially visible in the background.`,
		Images: []string{"images/partners-zone-lemur/1.jpg", "images/partners-zone-lemur/2.jpg"},
	},
	{
		Name: "Deer Statue",
		Description: `This image uniquely displays a prominent, bright orange statue of a stag with large antlers, standing on a rectangular pedestal covered in artificial grass. To the right of the stag is a dark wooden structure, possibly a kiosk or small building, featuring multiple colorful signs with text, likely menus or information. In the background, a large, white, arched or dome-shaped building is visible under a bright, cloudy sky, with hints of green grass in the foreground.`,
		Images: []string{"images/deer-statue/1.jpg", "images/deer-statue/2.jpg"},
	},
	{
		Name: "RedBull stage with tetris game",
		Description: `This indoor event space features a vibrant Red Bull Tetris promotional stand with cartoon figures, a drone, and a prominent QR code, all set against a backdrop of colorful Tetris blocks. The stand is framed by two tall, illuminated light blue block structures and rests on a distinctive green floor. People in casual attire are visible around the stand, suggesting an interactive and lively atmosphere.`,
		Images: []string{"images/redbull-tetris/1.jpg", "images/redbull-tetris/2.jpg"},
	},
	{
		Name: "HackYeah Blocks",
		Description: `This large arena space is set up for an event, featuring a prominent stage with "YEAH HACK" spelled out in large pink and white blocks. The tiered seating around the arena is illuminated with purple and blue lighting, creating a dynamic atmosphere. Overhead, a circular screen displays "HACK YEAH", and professional audio equipment, including large speakers, are visible on and around the stage, indicating a significant production.`,
		Images: []string{},
	},
	{
		Name: "Registration Lemur",
		Description: `This image features the distinctive purple and white lemur mascot, this time holding a "REGISTRATION" sign. The mascot stands on a bright green floor with a prominent red strip running through it, leading towards a visible entrance area with turnstiles. The background shows a modern indoor space with exposed ceilings and additional signage for "hacknite," hinting at an event or conference setting.`,
		Images: []string{},
	},
}

// Default returns the built-in quest catalogue.
func Default() *Catalogue {
	return &Catalogue{locations: defaultLocations}
}
