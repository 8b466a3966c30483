package mailbox

import "time"

// Seed returns the sample emails a fresh CampusMail mailbox starts with.
func Seed() []*Email {
	return []*Email{
		{
			ID:          "1",
			From:        "Academic Registry",
			FromAddress: "registry@aru.ac.tz",
			Subject:     "Important: Semester Registration Deadline",
			Preview: "Dear Student, This is to remind you that the deadline for semester " +
				"registration is approaching...",
			Date:          time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC),
			Starred:       true,
			HasAttachment: true,
			Label:         LabelImportant,
		},
		{
			ID:          "2",
			From:        "Dr. Sarah Mwanza",
			FromAddress: "s.mwanza@aru.ac.tz",
			Subject:     "RE: Research Proposal Feedback",
			Preview: "I have reviewed your research proposal and would like to schedule a " +
				"meeting to discuss...",
			Date:          time.Date(2024, time.December, 9, 0, 0, 0, 0, time.UTC),
			HasAttachment: true,
			Label:         LabelAcademic,
		},
		{
			ID:          "3",
			From:        "ARUSO",
			FromAddress: "aruso@students.aru.ac.tz",
			Subject:     "Annual Sports Day - Registration Open",
			Preview: "We are excited to announce that registration for the Annual Sports Day " +
				"is now open...",
			Date:  time.Date(2024, time.December, 8, 0, 0, 0, 0, time.UTC),
			Read:  true,
			Label: LabelAnnouncements,
		},
	}
}
