package analysis

import (
	"image"

	"github.com/luinbytes/image-automator/enhance"
)

// Kind is the guessed subject of an image.
type Kind int

const (
	Unknown Kind = iota
	Portrait
	Landscape
	Night
)

func (k Kind) String() string {
	switch k {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	case Night:
		return "night"
	}
	return "unknown"
}

// Rule maps a predicate over a profile to a kind.
type Rule struct {
	Kind  Kind
	Match func(Profile) bool
}

// Rules are evaluated in order; the first match wins. Anything left over is
// Unknown.
var Rules = []Rule{
	{Kind: Portrait, Match: looksLikeSkin},
	{Kind: Landscape, Match: mostlyGreen},
	{Kind: Night, Match: darkWithColour},
}

func looksLikeSkin(p Profile) bool {
	r, g, b := int(p.Mean.R), int(p.Mean.G), int(p.Mean.B)
	ratio := float64(r) / float64(max(g, 1))
	return ratio > 0.8 && ratio < 1.4 && r > 100 && g > 70 && b > 50
}

func mostlyGreen(p Profile) bool {
	m := p.Mean
	return m.G > m.R && m.G > m.B && m.G > 100
}

func darkWithColour(p Profile) bool {
	m := p.Mean
	spread := int(max(m.R, m.G, m.B)) - int(min(m.R, m.G, m.B))
	return p.Brightness == Dark && spread > 50
}

// Classify picks the kind of an analysed image.
func Classify(p Profile) Kind {
	for _, r := range Rules {
		if r.Match(p) {
			return r.Kind
		}
	}
	return Unknown
}

// Recipes holds the enhancement applied to each kind.
var Recipes = map[Kind]enhance.Recipe{
	Portrait: {Name: "portrait", Steps: []enhance.Adjustment{
		{Op: enhance.Saturation, Factor: 1.1},
		{Op: enhance.Contrast, Factor: 1.05},
	}},
	Landscape: {Name: "landscape", Steps: []enhance.Adjustment{
		{Op: enhance.Saturation, Factor: 1.3},
		{Op: enhance.Contrast, Factor: 1.2},
		{Op: enhance.Sharpness, Factor: 1.5},
	}},
	Night: {Name: "night", Steps: []enhance.Adjustment{
		{Op: enhance.Smooth},
		{Op: enhance.Brightness, Factor: 1.3},
	}},
	Unknown: {Name: "unknown", Steps: []enhance.Adjustment{
		{Op: enhance.Contrast, Factor: 1.1},
	}},
}

// Result is the outcome of SmartProcess.
type Result struct {
	Image   *image.NRGBA
	Kind    Kind
	Profile Profile
}

// SmartProcess analyses img, classifies it and applies the matching recipe.
func SmartProcess(img image.Image) (Result, error) {
	p, err := Analyze(img)
	if err != nil {
		return Result{}, err
	}
	k := Classify(p)
	return Result{
		Image:   enhance.Apply(img, Recipes[k]),
		Kind:    k,
		Profile: p,
	}, nil
}
