package skill

const noCourse = "No specific course recommendation available. Try searching on Coursera or Udemy."

var courses = map[string]string{
	"Python":              "Python for Everybody - Coursera",
	"Machine Learning":    "Machine Learning by Andrew Ng - Coursera",
	"TensorFlow":          "TensorFlow Developer Certificate - Coursera",
	"NLP":                 "Natural Language Processing Specialization - Coursera",
	"HTML":                "HTML, CSS, and Javascript for Web Developers - Coursera",
	"CSS":                 "HTML, CSS, and Javascript for Web Developers - Coursera",
	"JavaScript":          "JavaScript: The Complete Guide - Udemy",
	"React":               "React - The Complete Guide - Udemy",
	"Node.js":             "Node.js, Express, MongoDB & More - Udemy",
	"SQL":                 "SQL for Data Science - Coursera",
	"REST APIs":           "REST API Design, Development & Management - Udemy",
	"Agile":               "Agile Project Management - Udemy",
	"Figma":               "Figma for UI/UX Design - Udemy",
	"Jira":                "Mastering Jira - Udemy",
	"Excel":               "Excel Skills for Business - Coursera",
	"Tableau":             "Data Visualization with Tableau - Coursera",
	"Networking":          "Networking Fundamentals - Cisco Networking Academy",
	"Penetration Testing": "Penetration Testing with Kali Linux - Udemy",
	"Cryptography":        "Cryptography I - Coursera",
	"Linux":               "Linux Mastery: Master the Linux Command Line - Udemy",
	"Docker":              "Docker Mastery: The Complete Guide - Udemy",
	"Kubernetes":          "Kubernetes for the Absolute Beginners - Udemy",
	"AWS":                 "AWS Certified Solutions Architect - Udemy",
	"CI/CD":               "CI/CD with Jenkins and GitLab - Coursera",
	"Adobe XD":            "Adobe XD for Beginners - Udemy",
	"User Research":       "User Research and Design - Coursera",
	"Prototyping":         "Prototyping with Figma - Udemy",
	"Scikit-learn":        "Machine Learning with Python - Coursera",
	"Deep Learning":       "Deep Learning Specialization - Coursera",
	"Solidity":            "Solidity and Ethereum Smart Contracts - Udemy",
	"Ethereum":            "Blockchain and Ethereum Development - Coursera",
	"Smart Contracts":     "Smart Contracts with Solidity - Udemy",
	"Azure":               "Microsoft Azure Fundamentals - Coursera",
	"GCP":                 "Google Cloud Platform Fundamentals - Coursera",
	"Terraform":           "Terraform for Beginners - Udemy",
	"R":                   "R Programming - Coursera",
	"Statistics":          "Statistics with R - Coursera",
	"Java":                "Java Programming: Complete Beginner to Advanced - Udemy",
	"Git":                 "Git Complete: The Definitive Guide - Udemy",
	"Algorithms":          "Algorithms and Data Structures - Coursera",
	"Swift":               "iOS Development with Swift - Udemy",
	"Kotlin":              "Kotlin for Android Development - Udemy",
	"React Native":        "React Native - The Practical Guide - Udemy",
	"Flutter":             "Flutter & Dart - The Complete Guide - Udemy",
	"Problem Solving":     "Problem Solving for Developers - Udemy",
	"Communication":       "Effective Communication Skills - Coursera",
}

// CourseFor returns the recommended course for skill.
func CourseFor(skill string) string {
	if c, ok := courses[skill]; ok {
		return c
	}
	return noCourse
}
