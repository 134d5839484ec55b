package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/tbcpay/internal"
	gatewaytypes "github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *Client
		lastForm url.Values
		status   int
		reply    string
		ctx      context.Context
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = ""
		lastForm = nil
		ctx = context.Background()

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/x-www-form-urlencoded"))
			Expect(r.ParseForm()).To(Succeed())
			lastForm = r.PostForm
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		var err error
		client, err = NewClient(Config{MerchantURL: server.URL}, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("StartSMS", func() {
		It("submits the charge command with the full parameter set", func() {
			reply = "TRANSACTION_ID: abc+123=\n"

			res, err := client.StartSMS(ctx, gatewaytypes.StartParams{
				AmountMinor: 1050,
				Currency:    981,
				ClientIP:    "10.0.0.1",
				Description: "Website payment",
				Language:    "GE",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(lastForm.Get("command")).To(Equal("v"))
			Expect(lastForm.Get("amount")).To(Equal("1050"))
			Expect(lastForm.Get("currency")).To(Equal("981"))
			Expect(lastForm.Get("client_ip_addr")).To(Equal("10.0.0.1"))
			Expect(lastForm.Get("description")).To(Equal("Website payment"))
			Expect(lastForm.Get("language")).To(Equal("GE"))
			Expect(lastForm.Get("msg_type")).To(Equal("SMS"))
			Expect(res.IsStarted()).To(BeTrue())
			Expect(res.TransactionID()).To(Equal("abc+123="))
		})

		It("surfaces an explicit gateway rejection as an error reply", func() {
			reply = "error: invalid merchant\n"

			res, err := client.StartSMS(ctx, gatewaytypes.StartParams{AmountMinor: 100, Currency: 981})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError()).To(BeTrue())
			Expect(res.ErrorMessage()).To(Equal("invalid merchant"))
		})
	})

	Describe("StartDMS", func() {
		It("submits the authorization command", func() {
			reply = "TRANSACTION_ID: dms+456=\n"

			res, err := client.StartDMS(ctx, gatewaytypes.StartParams{AmountMinor: 200, Currency: 981})

			Expect(err).NotTo(HaveOccurred())
			Expect(lastForm.Get("command")).To(Equal("a"))
			Expect(lastForm.Get("msg_type")).To(Equal("DMS"))
			Expect(res.TransactionID()).To(Equal("dms+456="))
		})
	})

	Describe("CaptureDMS", func() {
		It("submits the capture command keyed on the transaction id", func() {
			reply = "RESULT: OK\nRESULT_CODE: 000\n"

			res, err := client.CaptureDMS(ctx, gatewaytypes.CaptureParams{
				TransID:     "dms+456=",
				AmountMinor: 200,
				Currency:    981,
				ClientIP:    "10.0.0.1",
				Description: "Website payment",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(lastForm.Get("command")).To(Equal("t"))
			Expect(lastForm.Get("trans_id")).To(Equal("dms+456="))
			Expect(lastForm.Get("amount")).To(Equal("200"))
			Expect(lastForm.Get("msg_type")).To(Equal("DMS"))
			Expect(res.Result()).To(Equal("OK"))
		})
	})

	Describe("QueryResult", func() {
		It("submits the result command and parses the outcome fields", func() {
			reply = "RESULT: OK\nRESULT_CODE: 000\nCARD_NUMBER: 4***1111\n"

			res, err := client.QueryResult(ctx, gatewaytypes.QueryParams{
				TransID:  "abc+123=",
				ClientIP: "10.0.0.1",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(lastForm.Get("command")).To(Equal("c"))
			Expect(lastForm.Get("trans_id")).To(Equal("abc+123="))
			Expect(res.Result()).To(Equal("OK"))
			Expect(res.ResultCode()).To(Equal("000"))
			Expect(res.CardNumber()).To(Equal("4***1111"))
		})
	})

	Describe("CloseBusinessDay", func() {
		It("submits the close command with settlement counters in the reply", func() {
			reply = "RESULT: OK\nRESULT_CODE: 500\nFLD_074: 12\nFLD_075: 3\n"

			res, err := client.CloseBusinessDay(ctx, gatewaytypes.CloseParams{ClientIP: "127.0.0.1"})

			Expect(err).NotTo(HaveOccurred())
			Expect(lastForm.Get("command")).To(Equal("b"))
			Expect(res.Result()).To(Equal("OK"))
			Expect(res["FLD_074"]).To(Equal("12"))
		})
	})

	Describe("transport failures", func() {
		It("wraps a non-200 status as a transport error", func() {
			status = http.StatusInternalServerError

			_, err := client.StartSMS(ctx, gatewaytypes.StartParams{AmountMinor: 100, Currency: 981})

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeTransportFailure))
		})

		It("wraps a connection failure as a transport error", func() {
			server.Close()

			_, err := client.QueryResult(ctx, gatewaytypes.QueryParams{TransID: "abc"})

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeTransportFailure))
		})
	})
})

var _ = Describe("ParseResponse", func() {
	It("parses newline-separated key/value pairs", func() {
		res := ParseResponse("TRANSACTION_ID: abc123\nRESULT: OK\n")

		Expect(res).To(HaveLen(2))
		Expect(res.TransactionID()).To(Equal("abc123"))
		Expect(res.Result()).To(Equal("OK"))
	})

	It("skips blank padding and lines without a separator", func() {
		res := ParseResponse("\n\nRESULT: FAILED\n\ngarbage line\n")

		Expect(res).To(HaveLen(1))
		Expect(res.Result()).To(Equal("FAILED"))
	})

	It("splits on the first colon so base64 ids survive intact", func() {
		res := ParseResponse("TRANSACTION_ID: ab+c=:d\n")

		Expect(res.TransactionID()).To(Equal("ab+c=:d"))
	})

	It("yields an empty response for an empty body", func() {
		res := ParseResponse("")

		Expect(res).To(BeEmpty())
		Expect(res.IsAmbiguous()).To(BeTrue())
	})
})
