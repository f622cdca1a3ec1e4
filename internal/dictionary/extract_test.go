package dictionary

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const salesView = `<?xml version="1.0" encoding="UTF-8"?>
<Calculation:scenario xmlns:Calculation="http://www.sap.com/ndb/BiModelCalculation.ecore" id="CV_SALES">
  <localVariables>
    <variable id="P_DATE" parameter="true">
      <parameter name="P_DATE">
        <descriptions><endUserTexts label="Date"/></descriptions>
      </parameter>
    </variable>
  </localVariables>
  <dataSources>
    <input><entity>#//V_SALES</entity></input>
  </dataSources>
  <viewNode name="Projection_1">
    <element name="#AMOUNT">
      <endUserTexts label="Amount"/>
      <inlineType primitiveType="DECIMAL" length="15"/>
    </element>
  </viewNode>
</Calculation:scenario>`

// End-to-end: one parameter, one entity, one element.
func TestExtract_SalesView(t *testing.T) {
	rows, err := Extract(salesView)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(rows))
	}
	wantParam := Row{
		TechnicalName:   "P_DATE",
		FieldLabel:      "Date",
		SourceTableView: "N/A",
		SourceFieldName: "N/A",
		Kind:            KindParameter,
		Mapping:         MappingNone,
		DataType:        "N/A",
		Logic:           "N/A",
	}
	if rows[0] != wantParam {
		t.Fatalf("row 1 = %+v\nwant %+v", rows[0], wantParam)
	}
	wantAttr := Row{
		TechnicalName:   "#AMOUNT",
		FieldLabel:      "Amount",
		SourceTableView: "V_SALES",
		SourceFieldName: "AMOUNT",
		Kind:            KindAttribute,
		Mapping:         MappingDirect,
		DataType:        "DECIMAL(15)",
		Logic:           "N/A",
	}
	if rows[1] != wantAttr {
		t.Fatalf("row 2 = %+v\nwant %+v", rows[1], wantAttr)
	}
}

func TestExtract_MalformedYieldsParseErrorAndNoRows(t *testing.T) {
	for _, in := range []string{
		"",
		"not xml",
		"<scenario><viewNode>",
		salesView + "<extra/>",
		`<s><viewNode><element name="A" name="B"/></viewNode></s>`,
		`<Calc:s><viewNode><element name="A"/></viewNode></Calc:s>`,
	} {
		rows, err := Extract(in)
		if err == nil {
			t.Fatalf("expected error for %q", in)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if !strings.HasPrefix(err.Error(), "parse xml: ") {
			t.Fatalf("error message %q lacks context", err.Error())
		}
		if len(rows) != 0 {
			t.Fatalf("expected no rows on error, got %d", len(rows))
		}
	}
}

func TestExtract_StringIgnoresDeclaredEncoding(t *testing.T) {
	in := `<?xml version="1.0" encoding="ISO-8859-1"?>
<s><viewNode><element name="SIZE"><endUserTexts label="Größe"/></element></viewNode></s>`
	rows, err := Extract(in)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || rows[0].FieldLabel != "Größe" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestExtractBytes_TranscodesDeclaredEncoding(t *testing.T) {
	in := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><s><viewNode><element name="SIZE"><endUserTexts label="Gr`), 0xF6, 0xDF)
	in = append(in, []byte(`e"/></element></viewNode></s>`)...)
	rows, err := ExtractBytes(in)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || rows[0].FieldLabel != "Größe" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestExtract_InternalEntity(t *testing.T) {
	rows, err := Extract(`<!DOCTYPE s [<!ENTITY e "X">]><s><viewNode><element name="&e;"/></viewNode></s>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || rows[0].TechnicalName != "X" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestExtract_CountAndOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("<scenario>")
	// interleave elements and parameters in the document to check grouping
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, `<viewNode><element name="E%d"/></viewNode>`, i)
		fmt.Fprintf(&b, `<parameter name="P%d"/>`, i)
	}
	b.WriteString(`<viewNode><element name="E3"/><element name="E4"/></viewNode>`)
	b.WriteString("</scenario>")

	rows, err := Extract(b.String())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.TechnicalName)
	}
	if got, want := strings.Join(names, ","), "P0,P1,P2,E0,E1,E2,E3,E4"; got != want {
		t.Fatalf("order=%s, want %s", got, want)
	}
	s := Summarize(rows)
	if s.Parameters != 3 || s.Attributes != 5 || s.Total() != len(rows) {
		t.Fatalf("summary=%+v", s)
	}
}

func TestExtract_ElementsOutsideViewNodeAreIgnored(t *testing.T) {
	rows, err := Extract(`<scenario><element name="X"/><viewNode><element name="Y"/></viewNode></scenario>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || rows[0].TechnicalName != "Y" {
		t.Fatalf("rows=%+v, want only Y", rows)
	}
}

func TestExtract_DataTypeDefaults(t *testing.T) {
	doc := `<scenario><viewNode>
	  <element name="NOTYPE"/>
	  <element name="TEXT"><inlineType primitiveType="NVARCHAR" length="50"/></element>
	  <element name="ZERO"><inlineType primitiveType="INTEGER" length="0"/></element>
	  <element name="NOLEN"><inlineType primitiveType="INTEGER"/></element>
	  <element name="NOPRIM"><inlineType length="10"/></element>
	</viewNode></scenario>`
	rows, err := Extract(doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]string{
		"NOTYPE": "N/A",
		"TEXT":   "NVARCHAR(50)",
		"ZERO":   "INTEGER",
		"NOLEN":  "INTEGER",
		"NOPRIM": "(10)",
	}
	for _, r := range rows {
		if r.DataType != want[r.TechnicalName] {
			t.Errorf("%s: data type %q, want %q", r.TechnicalName, r.DataType, want[r.TechnicalName])
		}
	}
}

func TestExtract_SourceEntity(t *testing.T) {
	doc, err := ExtractDocument([]byte(`<scenario>
	  <input><entity>#//my.package::MyView</entity></input>
	  <input><entity>#//ignored::Second</entity></input>
	  <viewNode><element name="A"/><element name="B"/></viewNode>
	</scenario>`))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.SourceEntity != "my.package::MyView" {
		t.Fatalf("source=%q", doc.SourceEntity)
	}
	for _, r := range doc.Rows {
		if r.SourceTableView != "my.package::MyView" {
			t.Fatalf("row %s source=%q", r.TechnicalName, r.SourceTableView)
		}
	}

	rows, err := Extract(`<scenario><viewNode><element name="A"/></viewNode></scenario>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if rows[0].SourceTableView != "N/A" {
		t.Fatalf("missing entity should give N/A, got %q", rows[0].SourceTableView)
	}
}

func TestExtract_EntityWithoutPrefixIsKept(t *testing.T) {
	doc, err := ExtractDocument([]byte(`<s><input><entity>SCHEMA.TABLE</entity></input></s>`))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.SourceEntity != "SCHEMA.TABLE" {
		t.Fatalf("source=%q", doc.SourceEntity)
	}
}

func TestExtract_FieldCleanupAndMissingAttributes(t *testing.T) {
	rows, err := Extract(`<s>
	  <parameter/>
	  <viewNode><element name="#My#Field"/><element/></viewNode>
	</s>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	if rows[0].TechnicalName != "" || rows[0].FieldLabel != "" {
		t.Fatalf("parameter without attributes should default to empty: %+v", rows[0])
	}
	if rows[1].SourceFieldName != "MyField" || rows[1].TechnicalName != "#My#Field" {
		t.Fatalf("field cleanup: %+v", rows[1])
	}
	if rows[2].TechnicalName != "" || rows[2].SourceFieldName != "" {
		t.Fatalf("nameless element should default to empty: %+v", rows[2])
	}
}

func TestExtract_LabelFromNestedEndUserTexts(t *testing.T) {
	rows, err := Extract(`<s><viewNode>
	  <element name="A"><descriptions><endUserTexts label="Deep"/></descriptions></element>
	  <element name="B"><endUserTexts/></element>
	</viewNode></s>`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if rows[0].FieldLabel != "Deep" {
		t.Fatalf("label=%q, want Deep", rows[0].FieldLabel)
	}
	if rows[1].FieldLabel != "" {
		t.Fatalf("label=%q, want empty", rows[1].FieldLabel)
	}
}

func TestExtract_IsRebuiltPerCall(t *testing.T) {
	first, err := Extract(salesView)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	first[0].TechnicalName = "mutated"
	second, err := Extract(salesView)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if second[0].TechnicalName != "P_DATE" {
		t.Fatalf("rows leaked between calls: %q", second[0].TechnicalName)
	}
}

func TestRecord_MatchesHeaderOrder(t *testing.T) {
	r := Row{TechnicalName: "a", FieldLabel: "b", SourceTableView: "c", SourceFieldName: "d", Kind: KindAttribute, Mapping: MappingDirect, DataType: "e", Logic: "f"}
	rec := r.Record()
	if len(rec) != len(Header()) {
		t.Fatalf("record has %d fields, header %d", len(rec), len(Header()))
	}
	if strings.Join(rec, "|") != "a|b|c|d|Attribute|Direct|e|f" {
		t.Fatalf("record=%v", rec)
	}
}
