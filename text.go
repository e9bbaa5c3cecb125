package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the copy shown around the project catalog.
type Profile struct {
	Name       string       `yaml:"name"`
	Headline   string       `yaml:"headline"`
	Tagline    string       `yaml:"tagline"`
	About      string       `yaml:"about"`
	Highlights []string     `yaml:"highlights"`
	Skills     []SkillGroup `yaml:"skills"`
	Experience []Role       `yaml:"experience"`
	Education  []Credential `yaml:"education"`
	Contact    ContactLinks `yaml:"contact"`
}

type SkillGroup struct {
	Title string   `yaml:"title"`
	Items []string `yaml:"items"`
}

type Role struct {
	Title        string   `yaml:"title"`
	Company      string   `yaml:"company"`
	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	LogoPath     string   `yaml:"logo_path"`
	BulletPoints []string `yaml:"bullet_points"`
	Tags         []string `yaml:"tags"`
}

type Credential struct {
	Degree       string   `yaml:"degree"`
	Institution  string   `yaml:"institution"`
	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	LogoPath     string   `yaml:"logo_path"`
	BulletPoints []string `yaml:"bullet_points"`
}

type ContactLinks struct {
	Email    string `yaml:"email"`
	GitHub   string `yaml:"github"`
	LinkedIn string `yaml:"linkedin"`
}

func defaultProfile() Profile {
	return Profile{
		Name:     "Abel Ronoh",
		Headline: "Full-Stack Developer & AI Enthusiast",
		Tagline: `I craft digital experiences that blend cutting-edge technology with elegant design.
	Specializing in full-stack development, AI integration, and scalable solutions that drive real impact.`,
		About: `I'm a software engineer who builds modern web applications that solve real-world problems.
	Most of my work pairs careful engineering with practical problem-solving, from moving paper
	processes onto software to wiring machine learning into everyday tools.`,
		Highlights: []string{
			"Clean, maintainable code architecture",
			"Performance optimization",
			"AI/ML integration",
			"Agile development methodology",
		},
		Skills: []SkillGroup{
			{Title: "Frontend", Items: []string{"JavaScript/TypeScript", "React", "Next.js", "Tailwind CSS"}},
			{Title: "Backend & Data", Items: []string{"Go", "Python", "PostgreSQL", "SQLite", "Data pipelines"}},
			{Title: "Tooling", Items: []string{"Git", "Docker", "Linux", "Figma"}},
		},
		Experience: []Role{
			{
				Title:     "IT/Software Engineering Intern",
				Company:   "Cadtech Services",
				StartDate: "2024",
				EndDate:   "Present",
				BulletPoints: []string{
					"Migrated companies from paper-based systems to modern software, improving operational efficiency",
					"Built custom software tailored to client needs, replacing manual processes with automated workflows",
					"Analyzed business requirements with cross-functional teams to design scalable architecture",
					"Trained staff to ensure smooth adoption of new digital systems",
				},
				Tags: []string{"Digital Transformation", "Custom Software", "System Migration", "Business Analysis"},
			},
			{
				Title:     "Software Engineer Attachée",
				Company:   "Zetech University",
				StartDate: "2023",
				EndDate:   "2024",
				BulletPoints: []string{
					"Developed an AI career guidance chatbot that helps students assess university programs",
				},
				Tags: []string{"AI", "Chatbots"},
			},
		},
		Education: []Credential{
			{
				Degree:      "Bachelors in Software Engineering",
				Institution: "Zetech University",
				StartDate:   "2022",
				EndDate:     "2025",
			},
			{
				Degree:      "Certification on Data Engineering",
				Institution: "Zoomcamp Short Course",
				StartDate:   "Jan 2024",
				EndDate:     "May 2024",
			},
		},
		Contact: ContactLinks{
			Email:    "abellronoh@gmail.com",
			GitHub:   "https://github.com/Abel-Ronoh",
			LinkedIn: "http://www.linkedin.com/in/abel-ronoh-ab718a265",
		},
	}
}

// loadProfile returns the built-in profile, overlaid with the YAML file at
// path when one is given. Keys missing from the file keep their defaults.
func loadProfile(path string) (Profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}
