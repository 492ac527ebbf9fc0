// Package prompts holds the fixed table of example prompts offered by "Random Prompt".
package prompts

var examples = []string{
	"A serene mountain landscape at sunrise with low mist and golden light",
	"A cozy cabin in a snowy forest at night, warm light glowing from the windows",
	"A futuristic city skyline with neon lights reflecting on rain-soaked streets",
	"A starry night sky over a calm lake, with the Milky Way clearly visible",
	"An ancient library filled with floating books and glowing runes, magical atmosphere",
	"A Pixar-style robot watering flowers on a tiny floating island in the sky",
	"A peaceful Japanese garden with a red bridge, koi pond, and cherry blossoms",
	"A dramatic thunderstorm over a sunflower field, cinematic lighting and contrast",
	"A whimsical treehouse village built in giant redwood trees, lanterns glowing at dusk",
	"An astronaut standing on an alien world, looking at a huge ringed planet in the sky",
	"A vibrant coral reef teeming with colorful fish and marine life, sun rays penetrating the water",
	"A fantasy castle perched on a cliff overlooking a vast ocean, sunset lighting",
	"A close-up portrait of a majestic lion with a flowing mane, golden hour lighting",
	"A bustling medieval marketplace with vendors, townsfolk, and lively activity",
	"A surreal desert landscape with giant floating crystals and a purple sky",
	"A cute puppy playing in a field of wildflowers under a bright blue sky",
	"A steampunk airship flying over a Victorian-era city, detailed and intricate design",
	"A magical forest clearing with glowing mushrooms and fairies dancing",
	"Majestic sunrise over a crystal-clear mountain lake, vibrant sky reflections, ultra-realistic colors, serene and inspiring.",
	"Desert dunes at twilight with long shadows, glowing horizon, dramatic clouds, cinematic mood.",
	"Van Gogh–inspired starry night over a quiet European village, swirling vibrant skies, painterly textures.",
	"Studio Ghibli–style cozy cottage in a meadow, magical lighting, whimsical atmosphere.",
	"Futuristic city skyline with floating skybridges, neon reflections in rain-soaked streets, cyberpunk aesthetic.",
	"A lone astronaut standing on an alien cliffside overlooking bioluminescent forests, surreal colors.",
	"A single bright red cardinal perched on a snowy branch, soft bokeh background, peaceful winter mood.",
	"A candlelit wooden desk with an open journal, handwritten notes, warm cozy glow, nostalgic atmosphere.",
}

// All returns a copy of the example table
func All() []string {
	out := make([]string, len(examples))
	copy(out, examples)
	return out
}

// Len returns the number of example prompts
func Len() int {
	return len(examples)
}

// Pick returns the entry selected by intn, which must return a value in [0, n)
func Pick(intn func(n int) int) string {
	return examples[intn(len(examples))]
}
