package checkout

import "html/template"

type pageData struct {
	Key         string
	Amount      int64
	Currency    string
	Merchant    string
	Description string
	PayerName   string
	SuccessURL  string
	FailureURL  string
}

var pageTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Description}}</title>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
<p id="status">Opening checkout for {{.Description}}...</p>
<script>
(function () {
  var done = false;
  function report(url, body, text) {
    if (done) { return; }
    done = true;
    fetch(url, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body)
    }).finally(function () {
      document.getElementById("status").textContent = text + " You can close this tab.";
    });
  }

  var options = {
    key: {{.Key}},
    amount: {{.Amount}},
    currency: {{.Currency}},
    name: {{.Merchant}},
    description: {{.Description}},
    prefill: {name: {{.PayerName}}},
    handler: function (response) {
      report({{.SuccessURL}}, {paymentId: response.razorpay_payment_id}, "Payment successful.");
    },
    modal: {
      ondismiss: function () {
        report({{.FailureURL}}, {
          code: "PAYMENT_CANCELLED",
          description: "Payment cancelled",
          source: "customer",
          reason: "payment_cancelled"
        }, "Payment cancelled.");
      }
    }
  };

  var rzp = new Razorpay(options);
  rzp.on("payment.failed", function (response) {
    var e = response.error || {};
    report({{.FailureURL}}, {
      code: e.code,
      description: e.description,
      source: e.source,
      step: e.step,
      reason: e.reason,
      metadata: e.metadata
    }, "Payment failed: " + (e.description || "unknown error") + ".");
  });
  rzp.open();
})();
</script>
</body>
</html>
`))
