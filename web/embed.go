package web

import "embed"

// ReceiptDocument is the page template the HTML receipt canvas fills.
const ReceiptDocument = "templates/recibos/document.html"

// Templates embeds HTML templates for documents converted by Gotenberg.
//
//go:embed templates/**/*.html
var Templates embed.FS
