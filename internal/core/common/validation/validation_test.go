package validation_test

import (
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func fieldCodes(err *internal.AppError) map[string]string {
	codes := map[string]string{}
	details, ok := err.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	for _, fe := range details.Errors {
		codes[fe.Field] = fe.Code
	}
	return codes
}

var _ = Describe("ValidationBuilder", func() {
	It("collects every failing field", func() {
		v := validation.NewValidator()
		v.Field("email", "not-an-email").Required().Email()
		v.Field("name", "  ").Required()
		v.Field("role", "BOSS").OneOf("WORKER", "HR")
		v.Field("password", "abc").MinLength(8)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
		Expect(fieldCodes(err)).To(HaveLen(4))
		Expect(err.GetDetailedMessage()).To(ContainSubstring("password must be at least 8 characters"))
	})

	It("passes valid input", func() {
		v := validation.NewValidator()
		v.Field("email", "ana@mail.com").Required().Email()
		v.Field("days", decimal.RequireFromString("2.5")).DaysRange(decimal.Zero, validation.MaxDaysPerYear, internal.ErrCodeInvalidDays).HalfDayStep(internal.ErrCodeInvalidDays)
		Expect(v.Validate()).To(BeNil())
	})

	It("rejects quarter days", func() {
		v := validation.NewValidator()
		v.Field("max_carry_over_days", decimal.RequireFromString("1.25")).HalfDayStep(internal.ErrCodeInvalidDays)
		Expect(fieldCodes(v.Validate())).To(HaveKeyWithValue("max_carry_over_days", string(internal.ErrCodeInvalidDays)))
	})
})

var _ = Describe("domain validators", func() {
	DescribeTable("ValidateYear",
		func(year int, ok bool) {
			Expect(validation.ValidateYear("targetYear", year) == nil).To(Equal(ok))
		},
		Entry("lower bound", 2000, true),
		Entry("upper bound", 2100, true),
		Entry("too early", 1999, false),
		Entry("too late", 2101, false),
	)

	DescribeTable("ValidateLeaveTypeCode",
		func(code string, ok bool) {
			Expect(validation.ValidateLeaveTypeCode(code) == nil).To(Equal(ok))
		},
		Entry("well known", "ANNUAL", true),
		Entry("custom with digits", "STUDY_2", true),
		Entry("lower case", "annual", false),
		Entry("single letter", "A", false),
		Entry("empty", "", false),
	)

	It("names the offending entry of a day map", func() {
		err := validation.ValidateDayMap("quotas", map[string]decimal.Decimal{
			"ANNUAL": decimal.NewFromInt(12),
			"SICK":   decimal.NewFromInt(400),
		})
		Expect(fieldCodes(err)).To(Equal(map[string]string{"quotas.SICK": string(internal.ErrCodeInvalidDays)}))
	})

	It("requires a non blank reason", func() {
		err := validation.ValidateReason("reason", "   ")
		Expect(fieldCodes(err)).To(HaveKeyWithValue("reason", string(internal.ErrCodeReasonRequired)))
		Expect(validation.ValidateReason("reason", "payroll fix")).To(BeNil())
	})
})
