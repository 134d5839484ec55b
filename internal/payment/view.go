package payment

import "html/template"

// The hosted-page redirect: an auto-submitted hidden form posting trans_id
// to the bank's ClientHandler, with a manual submit for no-script browsers.
// An error variant shows the gateway's message instead.
const redirectPage = `<!DOCTYPE html>
<html>
<head>
    <title>TBCPAY</title>
    <script type="text/javascript">
        function redirect() {
            document.returnform.submit();
        }
    </script>
</head>
{{- if .Error }}
<body>
    <h2>Error:</h2>
    <h1>{{ .Error }}</h1>
</body>
{{- else }}
<body onload="redirect()">
    <form name="returnform" action="{{ .FormURL }}" method="POST">
        <input type="hidden" name="trans_id" value="{{ .TransID }}">
        <noscript>
            <center>Please click the submit button below.<br>
                <input type="submit" name="submit" value="Submit">
            </center>
        </noscript>
    </form>
</body>
{{- end }}
</html>
`

var redirectTemplate = template.Must(template.New("tbc_start").Parse(redirectPage))

type redirectView struct {
	Error   string
	TransID string
	FormURL string
}
