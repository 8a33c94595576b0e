package document

import (
	"fmt"
	"strconv"

	"financas/internal/core"
	"financas/internal/report"
)

// Section names, in the order they appear in a report.
const (
	SectionSummary      = "summary"
	SectionCategories   = "categories"
	SectionDistribution = "distribution"
	SectionDetails      = "details"
	SectionEmpty        = "empty"
)

const (
	Title             = "RELATÓRIO FINANCEIRO"
	NoDataNotice      = "Nenhuma transação encontrada com os filtros aplicados."
	noEstablishment   = "Sem estabelecimento"
	summaryTitle      = "RESUMO FINANCEIRO"
	categoriesTitle   = "RESUMO POR CATEGORIA"
	distributionTitle = "DISTRIBUIÇÃO POR TIPO"
	detailsTitle      = "DETALHES DAS TRANSAÇÕES"
)

// Vertical metrics, in millimetres.
const (
	titleHeight     = 12
	ruleHeight      = 1
	infoLineHeight  = 8
	headingHeight   = 10
	headingAdvance  = 15
	headRowHeight   = 8
	summaryRowH     = 9
	categoryRowH    = 8
	detailRowH      = 7
	distributionRow = 8
	noticeHeight    = 8
	sectionGap      = 10
)

var (
	titleStyle   = Style{Size: 20, Bold: true, Tone: ToneAccent}
	infoStyle    = Style{Size: 11}
	headingStyle = Style{Size: 14, Bold: true, Tone: ToneAccent}
	headStyle    = Style{Size: 10, Bold: true, Tone: ToneInverse, Fill: true}
	cellStyle    = Style{Size: 9}
	footerStyle  = Style{Size: 8, Tone: ToneMuted}
	noticeStyle  = Style{Size: 11, Tone: ToneMuted}
)

func textRow(y, h float64, style Style, cells ...Cell) Element {
	return Element{Kind: KindRow, Y: y, Height: h, Cells: cells, Style: style}
}

func full(text string, a Align) Cell {
	return Cell{Text: text, Span: GridColumns, Align: a}
}

// HeaderChunk draws the page-1 header: title, rule and info lines.
func HeaderChunk(user string, generatedAt string, period string, kind string) Chunk {
	lines := []string{
		"Usuário: " + user,
		"Data de geração: " + generatedAt,
		"Período: " + period,
		"Tipo: " + kind,
	}
	extent := float64(titleHeight+3+ruleHeight+14) + float64(len(lines)*infoLineHeight) + sectionGap
	return Chunk{
		Extent: extent,
		Render: func(y float64) ([]Element, float64) {
			out := []Element{textRow(y, titleHeight, titleStyle, full(Title, AlignCenter))}
			y += titleHeight + 3
			out = append(out, Element{Kind: KindRule, Y: y, Height: ruleHeight, Style: Style{Tone: ToneAccent}})
			y += ruleHeight + 14
			for _, line := range lines {
				out = append(out, textRow(y, infoLineHeight, infoStyle, full(line, AlignLeft)))
				y += infoLineHeight
			}
			return out, y + sectionGap
		},
	}
}

// FooterHook stamps "Gerado em" on the left and the page number on the right.
func FooterHook(geo Geometry, generatedAt string) PageHook {
	return func(number int) []Element {
		return []Element{textRow(geo.FooterY, geo.FooterHeight, footerStyle,
			Cell{Text: "Gerado em " + generatedAt, Span: GridColumns / 2, Align: AlignLeft},
			Cell{Text: fmt.Sprintf("Página %d", number), Span: GridColumns / 2, Align: AlignRight},
		)}
	}
}

// table is a titled grid whose head repeats on continuation pages.
type table struct {
	name      string
	title     string
	head      []Cell
	rows      [][]Cell
	rowHeight float64
	rowStyle  Style
}

func rowChunk(cells []Cell, h float64, style Style) Chunk {
	return Chunk{
		Extent: h,
		Render: func(y float64) ([]Element, float64) {
			return []Element{textRow(y, h, style, cells...)}, y + h
		},
	}
}

// section keeps the heading, the head and the first row together so a
// table never starts on the last line of a page.
func (t table) section() Section {
	head := rowChunk(t.head, headRowHeight, headStyle)
	lead := Chunk{
		Extent: headingAdvance + headRowHeight,
		Render: func(y float64) ([]Element, float64) {
			out := []Element{textRow(y, headingHeight, headingStyle, full(t.title, AlignLeft))}
			elems, next := head.Render(y + headingAdvance)
			return append(out, elems...), next
		},
	}
	chunks := make([]Chunk, 0, len(t.rows))
	for i, cells := range t.rows {
		c := rowChunk(cells, t.rowHeight, t.rowStyle)
		if i == 0 {
			c = join(lead, c)
		}
		chunks = append(chunks, c)
	}
	if len(chunks) == 0 {
		chunks = append(chunks, lead)
	}
	return Section{Name: t.name, Chunks: chunks, Repeat: &head, Gap: sectionGap}
}

func join(a, b Chunk) Chunk {
	return Chunk{
		Extent: a.Extent + b.Extent,
		Render: func(y float64) ([]Element, float64) {
			first, mid := a.Render(y)
			second, end := b.Render(mid)
			return append(first, second...), end
		},
	}
}

// SummarySection lists totals for the kinds the filter allows. The balance
// row only appears when both kinds are exported.
func SummarySection(s core.Summary, k KindFilter) Section {
	var rows [][]Cell
	add := func(label, value string) {
		rows = append(rows, []Cell{
			{Text: label, Span: 8, Align: AlignLeft},
			{Text: value, Span: 4, Align: AlignRight},
		})
	}
	if k.Allows(core.Income) {
		add("Total de Receitas", Currency(s.TotalIncome))
	}
	if k.Allows(core.Expense) {
		add("Total de Despesas", Currency(s.TotalExpense))
	}
	if k == KindAll {
		add("Saldo Final", Currency(s.NetBalance()))
	}
	add("Total de Transações", strconv.Itoa(s.Count))

	return table{
		name:  SectionSummary,
		title: summaryTitle,
		head: []Cell{
			{Text: "Descrição", Span: 8, Align: AlignLeft},
			{Text: "Valor", Span: 4, Align: AlignRight},
		},
		rows:      rows,
		rowHeight: summaryRowH,
		rowStyle:  Style{Size: 10, Bold: true},
	}.section()
}

// CategorySection returns false when no bucket has activity for k.
func CategorySection(s core.Summary, k KindFilter) (Section, bool) {
	buckets := report.CategoryRows(s, k.Kind())
	if len(buckets) == 0 {
		return Section{}, false
	}

	type column struct {
		label string
		value func(report.CategoryRow) core.Money
	}
	var cols []column
	if k.Allows(core.Income) {
		cols = append(cols, column{"Receitas", func(r report.CategoryRow) core.Money { return r.Income }})
	}
	if k.Allows(core.Expense) {
		cols = append(cols, column{"Despesas", func(r report.CategoryRow) core.Money { return r.Expense }})
	}
	if k == KindAll {
		cols = append(cols, column{"Saldo", func(r report.CategoryRow) core.Money { return r.Net }})
	}
	const numSpan = 3
	nameSpan := GridColumns - numSpan*len(cols)

	head := []Cell{{Text: "Categoria", Span: nameSpan, Align: AlignLeft}}
	for _, c := range cols {
		head = append(head, Cell{Text: c.label, Span: numSpan, Align: AlignRight})
	}
	rows := make([][]Cell, 0, len(buckets))
	for _, b := range buckets {
		row := []Cell{{Text: b.Name, Span: nameSpan, Align: AlignLeft}}
		for _, c := range cols {
			row = append(row, Cell{Text: Currency(c.value(b)), Span: numSpan, Align: AlignRight})
		}
		rows = append(rows, row)
	}

	return table{
		name:      SectionCategories,
		title:     categoriesTitle,
		head:      head,
		rows:      rows,
		rowHeight: categoryRowH,
		rowStyle:  cellStyle,
	}.section(), true
}

// DistributionSection prints one line per allowed kind with its share of
// the combined chart total.
func DistributionSection(chart []core.ChartPoint, k KindFilter) Section {
	total := core.Zero
	for _, p := range chart {
		total = total.Add(p.Value)
	}
	var lines []string
	for _, p := range chart {
		if !k.Allows(p.Kind) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s%%)", p.Name, Currency(p.Value), Percent(p.Value, total)))
	}
	extent := float64(headingAdvance + len(lines)*distributionRow)
	return Section{
		Name: SectionDistribution,
		Chunks: []Chunk{{
			Extent: extent,
			Render: func(y float64) ([]Element, float64) {
				out := []Element{textRow(y, headingHeight, headingStyle, full(distributionTitle, AlignLeft))}
				y += headingAdvance
				for _, line := range lines {
					out = append(out, textRow(y, distributionRow, infoStyle,
						Cell{Span: 1},
						Cell{Text: line, Span: GridColumns - 1, Align: AlignLeft},
					))
					y += distributionRow
				}
				return out, y
			},
		}},
		Gap: sectionGap,
	}
}

// DetailSection renders one row per transaction. It fails on records whose
// kind or amount cannot be displayed.
func DetailSection(txs []core.Transaction) (Section, error) {
	rows := make([][]Cell, 0, len(txs))
	for _, t := range txs {
		if !t.Kind.IsValid() || t.Amount.IsNegative() {
			return Section{}, fmt.Errorf("%w: transaction %d", ErrMalformedSection, t.ID)
		}
		rows = append(rows, []Cell{
			{Text: DateText(t.Date), Span: 2, Align: AlignLeft},
			{Text: orDefault(t.Establishment, noEstablishment), Span: 3, Align: AlignLeft},
			{Text: t.DisplayCategory(), Span: 3, Align: AlignLeft},
			{Text: t.Kind.String(), Span: 2, Align: AlignLeft},
			{Text: SignedCurrency(t), Span: 2, Align: AlignRight},
		})
	}
	return table{
		name:  SectionDetails,
		title: detailsTitle,
		head: []Cell{
			{Text: "Data", Span: 2, Align: AlignLeft},
			{Text: "Estabelecimento", Span: 3, Align: AlignLeft},
			{Text: "Categoria", Span: 3, Align: AlignLeft},
			{Text: "Tipo", Span: 2, Align: AlignLeft},
			{Text: "Valor", Span: 2, Align: AlignRight},
		},
		rows:      rows,
		rowHeight: detailRowH,
		rowStyle:  cellStyle,
	}.section(), nil
}

// EmptySection is the notice shown in place of the detail table.
func EmptySection() Section {
	return Section{
		Name:   SectionEmpty,
		Chunks: []Chunk{rowChunk([]Cell{full(NoDataNotice, AlignLeft)}, noticeHeight, noticeStyle)},
		Gap:    sectionGap,
	}
}
