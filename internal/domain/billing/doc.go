// Package billing contains the quoting and invoicing core of the CRM:
// deterministic money math for line items and documents, the quote
// lifecycle state machine, and the invoice payment ledger.
package billing
