package calendar_test

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func march(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Calendar", func() {
	Describe("Parse", func() {
		It("accepts plain dates and timestamps", func() {
			d, err := calendar.Parse("2025-03-03")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(march(3)))

			d, err = calendar.Parse("2025-03-03T17:45:00Z")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(march(3)))
		})

		It("rejects anything else", func() {
			_, err := calendar.Parse("03/03/2025")
			Expect(err).To(MatchError(ContainSubstring("expected YYYY-MM-DD")))
		})
	})

	Describe("Date JSON", func() {
		It("round trips through YYYY-MM-DD", func() {
			b, err := json.Marshal(calendar.NewDate(march(7).Add(13 * time.Hour)))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`"2025-03-07"`))

			var d calendar.Date
			Expect(json.Unmarshal([]byte(`"2025-03-07"`), &d)).To(Succeed())
			Expect(d.Time).To(Equal(march(7)))
		})

		It("treats null as the zero date", func() {
			var d calendar.Date
			Expect(json.Unmarshal([]byte(`null`), &d)).To(Succeed())
			Expect(d.IsZero()).To(BeTrue())

			b, _ := json.Marshal(d)
			Expect(string(b)).To(Equal("null"))
		})
	})

	Describe("WorkingDays", func() {
		noHolidays := map[string]bool{}

		DescribeTable("counts weekdays minus holidays and half days",
			func(start, end time.Time, holidays map[string]bool, startDur, endDur string, want string) {
				got := calendar.WorkingDays(start, end, holidays, startDur, endDur)
				Expect(got.Equal(decimal.RequireFromString(want))).To(BeTrue(), "got %s", got)
			},
			Entry("full week", march(3), march(7), noHolidays, "", "", "5"),
			Entry("across a weekend", march(6), march(10), noHolidays, "", "", "3"),
			Entry("weekend only", march(8), march(9), noHolidays, "", "", "0"),
			Entry("with a holiday", march(3), march(7), map[string]bool{"2025-03-05": true}, "", "", "4"),
			Entry("half start and end", march(3), march(7), noHolidays, calendar.DurationHalfAfternoon, calendar.DurationHalfMorning, "4"),
			Entry("single half day", march(4), march(4), noHolidays, calendar.DurationHalfMorning, calendar.DurationHalfMorning, "0.5"),
			Entry("half day on a saturday costs nothing", march(8), march(8), noHolidays, calendar.DurationHalfMorning, "", "0"),
			Entry("end before start", march(7), march(3), noHolidays, "", "", "0"),
		)
	})

	Describe("YearBounds and ConsecutiveDays", func() {
		It("spans the calendar year", func() {
			from, to := calendar.YearBounds(2024)
			Expect(from).To(Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			Expect(to).To(Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("counts calendar days inclusively", func() {
			Expect(calendar.ConsecutiveDays(march(3), march(9))).To(Equal(7))
			Expect(calendar.ConsecutiveDays(march(3), march(3))).To(Equal(1))
		})
	})

	It("knows the valid durations", func() {
		Expect(calendar.ValidDuration("")).To(BeTrue())
		Expect(calendar.ValidDuration(calendar.DurationHalfAfternoon)).To(BeTrue())
		Expect(calendar.ValidDuration("EVENING")).To(BeFalse())
	})
})
