package main

// Project is one card in the project gallery.
type Project struct {
	ID          int
	Title       string
	Description string
	Tech        []string
	Image       string
	Link        string
}

// Position is a work experience or education entry.
type Position struct {
	Title        string
	Organization string
	Period       string
	Link         string
	BulletPoints []string
}

const (
	OwnerName   = "Pratik Ch: Das"
	OwnerRole   = "Full Stack Web Developer"
	GithubURL   = "https://github.com/pratikdas018"
	LinkedinURL = "https://www.linkedin.com/in/pratik-das-sonu-7201a328b/"
	ResumePath  = "/resume.pdf"

	offerLetterURL = "https://drive.google.com/drive/folders/1vQ2rTmOmw692DxreyN2wRw-f-LR9QC0S"
)

var (
	Intro = `Final-year B.Tech CSE student & Full Stack Web Developer building performant, accessible
	and delightful web applications. I craft end-to-end solutions, from sleek, responsive
	UIs to scalable backend systems.`

	AboutMe = `I'm Pratik, a final-year B.Tech CSE student with a passion for building full-stack
	applications. I focus on clean user interfaces, robust server-side logic and pragmatic
	engineering that solves real user problems. I like to learn new technologies quickly and
	iterate fast to deliver measurable impact.`

	FocusAreas = []string{
		"Real-time applications (WebSockets)",
		"API design & performance",
		"Responsive & accessible UI",
	}

	Strengths = []string{
		"End-to-end product thinking",
		"Fast debugging & test-driven fixes",
		"Practical UX decisions",
	}

	FrontendSkills = []string{"React", "Next.js", "TailwindCSS", "TypeScript", "Redux/RTK", "Framer Motion"}
	BackendSkills  = []string{"Node.js", "Express", "MongoDB", "Postgres", "Socket.io", "Docker"}
)

var Projects = []Project{
	{
		ID:          1,
		Title:       "TalkSy - Real-time Chat App",
		Description: "Full-stack real-time chat app with WebSocket, authentication and multimedia support. Scalable rooms, presence indicators and typing status.",
		Tech:        []string{"React", "Node.js", "Socket.io", "MongoDB"},
		Image:       "/projects/talksy.svg",
		Link:        "https://realtimetalk-frontend.onrender.com",
	},
	{
		ID:          2,
		Title:       "Vingo Real-time Food-delivery-App",
		Description: "A full-stack food delivery platform with real-time tracking, restaurant listings, and a responsive UI. Built with React.js, Node.js, Express, and MongoDB.",
		Tech:        []string{"React", "Express", "Node.js", "Socket.io", "JWT", "MongoDB"},
		Image:       "/projects/vingo.svg",
		Link:        "https://food-delivery-vingo-frontend.onrender.com",
	},
	{
		ID:          3,
		Title:       "TalkNex - AI Voice Assistant",
		Description: "An AI-based voice assistant similar to Google Assistant that allows users to talk via voice commands, set a custom assistant name and image, and interact naturally.",
		Tech:        []string{"React", "Web Speech API", "JavaScript", "AI Logic"},
		Image:       "/projects/talknex.svg",
		Link:        "https://github.com/pratikdas018/talkNex",
	},
	{
		ID:          4,
		Title:       "LMS - Learning Management System",
		Description: "A full-stack Learning Management System that supports role-based access for students and admins, task assignment, progress tracking, and secure authentication.",
		Tech:        []string{"React", "Node.js", "Express", "MongoDB", "JWT"},
		Image:       "/projects/lms.svg",
		Link:        "https://codelms-net.vercel.app/",
	},
	{
		ID:          5,
		Title:       "Resume Shortlister (ATS Skill Match Analyzer)",
		Description: "A resume analysis tool that compares user skills with job descriptions and calculates an exact match percentage, highlighting missing and matched skills.",
		Tech:        []string{"React", "JavaScript", "Text Analysis", "ATS Logic"},
		Image:       "/projects/resume-shortlister.svg",
		Link:        "https://github.com/pratikdas018/resume-shortlister",
	},
}

var Experience = []Position{
	{
		Title:        "Web Development Intern",
		Organization: "Saiket Systems",
		Period:       "Internship",
		Link:         offerLetterURL,
		BulletPoints: []string{
			"Worked on real-world web development projects using React and modern UI practices",
			"Built responsive and user-friendly interfaces following industry standards",
			"Collaborated with mentors and followed structured task-based development",
			"Improved debugging, code optimization, and deployment skills",
		},
	},
	{
		Title:        "Web Development Intern",
		Organization: "Dynamix Networks",
		Period:       "Internship",
		Link:         offerLetterURL,
		BulletPoints: []string{
			"Developed full-stack features using MERN stack",
			"Worked on authentication, REST APIs, and database integration",
			"Implemented real-time and interactive components",
			"Maintained GitHub repositories and shared progress on LinkedIn",
		},
	},
}

var Education = []Position{
	{
		Title:        "B.Tech - Computer Science & Engineering",
		Organization: "Makaut University",
		Period:       "Expected 2026",
		BulletPoints: []string{
			"Relevant coursework: Data Structures, Algorithms, Databases, Distributed Systems",
		},
	},
}
