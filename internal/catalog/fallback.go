package catalog

const githubProfile = "https://github.com/Abel-Ronoh"

// Fallback returns the demonstration projects shown when the sheet cannot
// be loaded. Each call returns a fresh copy.
func Fallback() []Project {
	return cloneAll(fallbackProjects)
}

func strPtr(s string) *string { return &s }

var fallbackProjects = []Project{
	{
		ID:               "1",
		Title:            "AI Career Guidance Chatbot",
		Description:      "An intelligent chatbot that helps students make informed career choices using locally running LLMs to reduce API costs by 50%.",
		ShortDescription: "An intelligent chatbot that helps students make informed career choices using locally running LLMs to reduce API costs by 50%.",
		LongDescription:  "An intelligent chatbot that helps students make informed career choices using locally running LLMs to reduce API costs by 50%.",
		Technologies:     []string{"Python", "LLM", "React", "FastAPI"},
		Category:         "ai-ml",
		GithubURL:        strPtr(githubProfile),
		LiveURL:          strPtr("#"),
		Featured:         true,
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
	{
		ID:               "2",
		Title:            "Geolocation Service App",
		Description:      "Real-time technician tracking app with Google Maps integration, reducing user search time by 40% through optimized service discovery.",
		ShortDescription: "Real-time technician tracking app with Google Maps integration, reducing user search time by 40% through optimized service discovery.",
		LongDescription:  "Real-time technician tracking app with Google Maps integration, reducing user search time by 40% through optimized service discovery.",
		Technologies:     []string{"React", "Node.js", "Google Maps API", "Socket.io"},
		Category:         "web-app",
		GithubURL:        strPtr(githubProfile),
		LiveURL:          strPtr("#"),
		Featured:         true,
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
	{
		ID:               "3",
		Title:            "ETL Pipeline Analytics",
		Description:      "Data engineering pipeline for user analytics using Python, PostgreSQL, and Apache Airflow, reducing processing time by 35%.",
		ShortDescription: "Data engineering pipeline for user analytics using Python, PostgreSQL, and Apache Airflow, reducing processing time by 35%.",
		LongDescription:  "Data engineering pipeline for user analytics using Python, PostgreSQL, and Apache Airflow, reducing processing time by 35%.",
		Technologies:     []string{"Python", "PostgreSQL", "Apache Airflow", "GCP"},
		Category:         "data-engineering",
		GithubURL:        strPtr(githubProfile),
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
	{
		ID:               "4",
		Title:            "Full-Stack E-commerce Platform",
		Description:      "Modern e-commerce solution with real-time inventory management, payment integration, and admin dashboard.",
		ShortDescription: "Modern e-commerce solution with real-time inventory management, payment integration, and admin dashboard.",
		LongDescription:  "Modern e-commerce solution with real-time inventory management, payment integration, and admin dashboard.",
		Technologies:     []string{"Next.js", "TypeScript", "Supabase", "Stripe"},
		Category:         "web-app",
		GithubURL:        strPtr(githubProfile),
		LiveURL:          strPtr("#"),
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
	{
		ID:               "5",
		Title:            "Real-time Collaboration Tool",
		Description:      "Collaborative workspace with real-time editing, video conferencing, and project management features.",
		ShortDescription: "Collaborative workspace with real-time editing, video conferencing, and project management features.",
		LongDescription:  "Collaborative workspace with real-time editing, video conferencing, and project management features.",
		Technologies:     []string{"React", "WebRTC", "Socket.io", "MongoDB"},
		Category:         "web-app",
		GithubURL:        strPtr(githubProfile),
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
	{
		ID:               "6",
		Title:            "Smart Home Automation",
		Description:      "IoT-based home automation system with mobile app control, voice commands, and energy monitoring.",
		ShortDescription: "IoT-based home automation system with mobile app control, voice commands, and energy monitoring.",
		LongDescription:  "IoT-based home automation system with mobile app control, voice commands, and energy monitoring.",
		Technologies:     []string{"Python", "React Native", "MQTT", "Raspberry Pi"},
		Category:         "iot",
		GithubURL:        strPtr(githubProfile),
		Status:           DefaultStatus,
		Features:         []string{},
		Images:           []string{},
	},
}
