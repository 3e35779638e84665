package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const xmpTemplate = `<?xpacket begin="` + "\ufeff" + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:pdf="http://ns.adobe.com/pdf/1.3/"
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:pdfx="http://ns.adobe.com/pdfx/1.3/">
   <dc:title><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:title>
   <dc:description><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:description>
   <dc:creator><rdf:Seq><rdf:li>%s</rdf:li></rdf:Seq></dc:creator>
   <pdf:Keywords>%s</pdf:Keywords>
   <xmp:CreatorTool>%s</xmp:CreatorTool>
   <xmp:CreateDate>%s</xmp:CreateDate>
   <pdfx:OutputCondition>%s</pdfx:OutputCondition>
   <pdfx:OutputConditionIdentifier>%s</pdfx:OutputConditionIdentifier>
   <pdfx:ColorSpaceIntent>DeviceCMYK</pdfx:ColorSpaceIntent>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

// xmpPacket builds the XMP metadata stream declaring the print intent.
func xmpPacket(meta Metadata, ts time.Time) []byte {
	return fmt.Appendf(nil, xmpTemplate,
		xmlEscape(meta.Title),
		xmlEscape(meta.Subject),
		xmlEscape(meta.Author),
		xmlEscape(meta.Keywords),
		xmlEscape(meta.Creator),
		ts.UTC().Format(time.RFC3339),
		xmlEscape(meta.OutputCondition),
		xmlEscape(meta.OutputConditionID),
	)
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
