package seed

import "github.com/MrSnakeDoc/jobboard/internal/domain"

// Builtin returns the listings written into an empty store on first load.
func Builtin() []domain.JobInput {
	return []domain.JobInput{
		{
			Title:      "Frontend Developer",
			Company:    "테크스타트업",
			Logo:       "/logos/tech-startup.svg",
			Location:   "서울 강남구",
			Deadline:   "2025-02-15",
			ApplyURL:   "https://careers.techstartup.com/frontend-developer",
			PostedDate: "2025-01-15",
		},
		{
			Title:      "Backend Engineer",
			Company:    "핀테크솔루션",
			Logo:       "/logos/fintech-solution.svg",
			Location:   "서울 서초구",
			Deadline:   "2025-02-20",
			ApplyURL:   "https://jobs.fintechsolution.co.kr/backend-engineer",
			PostedDate: "2025-01-14",
		},
		{
			Title:      "Full Stack Developer",
			Company:    "이커머스플랫폼",
			Logo:       "/logos/ecommerce-platform.svg",
			Location:   "부산 해운대구",
			PostedDate: "2025-01-13",
		},
		{
			Title:      "UI/UX Designer",
			Company:    "디자인에이전시",
			Logo:       "/logos/design-agency.svg",
			Location:   "서울 홍대",
			Deadline:   "2025-01-30",
			ApplyURL:   "https://apply.designagency.kr/uiux-designer",
			PostedDate: "2025-01-12",
		},
		{
			Title:      "DevOps Engineer",
			Company:    "클라우드서비스",
			Logo:       "/logos/cloud-service.svg",
			Location:   "원격근무",
			PostedDate: "2025-01-11",
		},
	}
}
