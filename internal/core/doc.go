// Package core holds the barcode domain: formats and payload rules, the
// in-memory code registry, image generation and the import, export and
// clear operations exposed by [Service].
//
// # Formats
//
// Three symbologies are supported. A numeric code is left-padded with zeros
// to the format's payload width before rendering:
//
//	code128  no padding
//	ean13    13 digits, the last one must be a valid check digit
//	ean14    14 digits, drawn as GS1-128 with the (01) identifier
//
// Images are written as barcode_<format>_<payload>.png under the configured
// barcode directory, so a payload maps to exactly one file.
//
// # Operations
//
// [Service.Import] reads the first column of an xlsx upload. Non-numeric
// rows are skipped, codes that fail to render are dropped, and the rest are
// appended to the registry in row order once the batch is done.
//
// [Service.Export] re-renders every registered code of a scope and writes
// dados_<scope>.xlsx with the code as text and the image beside it.
//
// [Service.Clear] removes a format's images and empties its registry list.
//
// Import and export take a slot from a [JobLimiter] first.
//
// # Errors
//
// Client errors ([ErrInvalidFormat], [ErrNoFile], [ErrFileTooLarge],
// [ErrNoWorksheet]) are reported by [IsClientError]. [MapError] turns any
// error into a Portuguese [UserMessage] with a support code.
package core
