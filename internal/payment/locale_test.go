package payment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/tbcpay/internal/payment"
)

var _ = Describe("ResolveLanguage", func() {
	It("maps the Georgian locale to the gateway's GE code", func() {
		Expect(payment.ResolveLanguage("ka")).To(Equal("GE"))
		Expect(payment.ResolveLanguage("KA")).To(Equal("GE"))
		Expect(payment.ResolveLanguage("Ka")).To(Equal("GE"))
	})

	It("uppercases every other locale unchanged", func() {
		Expect(payment.ResolveLanguage("en")).To(Equal("EN"))
		Expect(payment.ResolveLanguage("En")).To(Equal("EN"))
		Expect(payment.ResolveLanguage("ru")).To(Equal("RU"))
		Expect(payment.ResolveLanguage("ge")).To(Equal("GE"))
	})
})
