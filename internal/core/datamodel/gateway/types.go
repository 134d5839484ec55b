package gateway

// Response is the parsed body of one ECOMM merchant-handler reply. The wire
// format is newline-separated "KEY: value" pairs; a start reply carries either
// an "error" line or a "TRANSACTION_ID" line, a result query carries RESULT,
// RESULT_CODE and CARD_NUMBER among others.
type Response map[string]string

const (
	KeyTransactionID = "TRANSACTION_ID"
	KeyError         = "error"
	KeyResult        = "RESULT"
	KeyResultCode    = "RESULT_CODE"
	KeyCardNumber    = "CARD_NUMBER"

	// ResultOK is the only value that marks a transaction paid. The
	// comparison is exact string equality, not presence of the key.
	ResultOK = "OK"
)

func (r Response) Has(key string) bool {
	_, ok := r[key]
	return ok
}

func (r Response) TransactionID() string { return r[KeyTransactionID] }
func (r Response) ErrorMessage() string  { return r[KeyError] }
func (r Response) Result() string        { return r[KeyResult] }
func (r Response) ResultCode() string    { return r[KeyResultCode] }
func (r Response) CardNumber() string    { return r[KeyCardNumber] }

// IsError reports a reply the gateway explicitly rejected.
func (r Response) IsError() bool { return r.Has(KeyError) }

// IsStarted reports a start reply that assigned a transaction id.
func (r Response) IsStarted() bool { return r.Has(KeyTransactionID) }

// IsAmbiguous reports a start reply with neither an error nor an id. The
// attempt's real outcome is only discoverable through a later result query.
func (r Response) IsAmbiguous() bool { return !r.IsError() && !r.IsStarted() }

// StartParams carries everything a start command needs. Amount is already in
// the gateway's minor units.
type StartParams struct {
	AmountMinor int64
	Currency    int
	ClientIP    string
	Description string
	Language    string
}

type CaptureParams struct {
	TransID     string
	AmountMinor int64
	Currency    int
	ClientIP    string
	Description string
}

type QueryParams struct {
	TransID  string
	ClientIP string
}

type CloseParams struct {
	ClientIP string
}
