package payment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/tbcpay/internal/payment"
)

var _ = Describe("Amount conversion", func() {
	Describe("ToMinorUnits", func() {
		It("multiplies by the configured unit", func() {
			Expect(payment.ToMinorUnits(decimal.RequireFromString("10.50"), 100)).To(Equal(int64(1050)))
			Expect(payment.ToMinorUnits(decimal.RequireFromString("0.01"), 100)).To(Equal(int64(1)))
			Expect(payment.ToMinorUnits(decimal.RequireFromString("999999.99"), 100)).To(Equal(int64(99999999)))
		})

		It("passes the amount through untouched with unit 1", func() {
			Expect(payment.ToMinorUnits(decimal.RequireFromString("1050"), 1)).To(Equal(int64(1050)))
		})
	})

	Describe("ToMajorUnits", func() {
		It("divides back to the original scale", func() {
			Expect(payment.ToMajorUnits(1050, 100).Equal(decimal.RequireFromString("10.50"))).To(BeTrue())
			Expect(payment.ToMajorUnits(1, 100).Equal(decimal.RequireFromString("0.01"))).To(BeTrue())
		})
	})

	It("round-trips every representable amount exactly", func() {
		amounts := []string{"0.01", "1", "1.00", "10.50", "250.75", "999999.99"}
		for _, unit := range []int64{1, 100} {
			for _, raw := range amounts {
				amount := decimal.RequireFromString(raw)
				back := payment.ToMajorUnits(payment.ToMinorUnits(amount, unit), unit)
				Expect(back.Equal(amount)).To(BeTrue(), "unit %d amount %s came back as %s", unit, raw, back)
			}
		}
	})
})
