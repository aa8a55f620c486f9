package web

type navLink struct {
	Path  string
	Label string
}

var navLinks = []navLink{
	{"/", "Home"},
	{"/about", "About"},
	{"/projects", "Projects"},
	{"/contact", "Contact"},
}

type socialLink struct {
	Label string
	URL   string
}

type profile struct {
	Name     string
	Role     string
	Tagline  string
	Bio      string
	Stack    []string
	Skills   []string
	Resume   []string
	Socials  []socialLink
	CVPath   string
	CVButton string
}

// owner is the static content of every page except the projects grid.
var owner = profile{
	Name:    "Vishwa Gaurav Shukla",
	Role:    "Full-Stack Developer",
	Tagline: "Frontend Developer | Full Stack Enthusiast | Innovator",
	Bio:     "I craft interactive and scalable applications blending clean code with futuristic design. Always curious, always building.",
	Stack:   []string{"React", "TypeScript", "Tailwind CSS"},
	Skills:  []string{"React", "TypeScript", "TailwindCSS", "Redux", "Node.js", "Vite", "Framer Motion"},
	Resume:  []string{"React", "Node.js", "TypeScript", "Tailwind CSS", "Redux"},
	Socials: []socialLink{
		{"GitHub", "https://github.com/DevGodVGS"},
		{"LinkedIn", "https://linkedin.com/in/your-profile"},
		{"Twitter", "https://twitter.com/your-profile"},
		{"Email", "mailto:you@example.com"},
	},
	CVPath:   "/Vishwa_Gaurav_Shukla_Resume.pdf",
	CVButton: "Unleash My Potential",
}

const (
	placeholderScreenshot = "https://via.placeholder.com/400x250?text=No+Screenshot"
	noDescription         = "No description available."
	loadFailedMessage     = "Could not load projects from GitHub right now."
	errorMessage          = "Something went wrong. Please try again."
)

// overlay is the particle field a page asks the stream endpoint for.
type overlay struct {
	Variant string
	Count   int
}

var (
	aboutOverlay   = &overlay{variantTrail, 20}
	contactOverlay = &overlay{variantTrail, 25}
	errorOverlay   = &overlay{variantTrail, 25}
	resumeOverlay  = &overlay{variantGlow, 25}
)
