// Package ubl exporta una venta calculada como documento XML estilo UBL 2.1.
package ubl

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// Exporter construye el XML de la venta a partir del resultado del motor de
// cálculo. Implementa usecase.SaleXMLExporter.
type Exporter struct{}

// NewExporter crea el exportador.
func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportSaleXML genera el []byte del documento Invoice UBL 2.1.
func (e *Exporter) ExportSaleXML(
	sale *entity.Sale,
	company *entity.Company,
	customer *entity.Customer,
	amounts *pricing.SaleAmounts,
) ([]byte, error) {
	if sale == nil || company == nil || customer == nil || amounts == nil {
		return nil, fmt.Errorf("ubl: faltan venta, empresa, cliente o montos")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	number := sale.Number
	if number == "" {
		number = sale.ID
	}

	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "ID", number)
	cbc(root, "IssueDate", sale.Date.Format("2006-01-02"))
	cbc(root, "DocumentCurrencyCode", sale.Currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(countPublic(sale.Items)))

	writeSupplierParty(root, company)
	writeCustomerParty(root, customer)
	writeTaxTotal(root, sale.Currency, amounts.Final)
	writeMonetaryTotal(root, sale.Currency, amounts)

	lineNum := 0
	writeLines(root, sale.Items, amounts, sale.Currency, &lineNum)
	if sale.Shipment != nil && !amounts.Shipment.IsZero() {
		lineNum++
		writeShipmentLine(root, sale.Shipment, amounts.Shipment, sale.Currency, lineNum)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// cbc agrega un elemento cbc:<local> con texto.
func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

// cbcAmount agrega un elemento cbc:<local> con atributo currencyID.
func cbcAmount(parent *etree.Element, local string, value decimal.Decimal, currency string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.CreateAttr("currencyID", currency)
	el.SetText(value.StringFixed(2))
	return el
}

func writeSupplierParty(root *etree.Element, company *entity.Company) {
	supplier := root.CreateElement("cac:AccountingSupplierParty")
	party := supplier.CreateElement("cac:Party")

	ident := party.CreateElement("cac:PartyIdentification")
	cbc(ident, "ID", company.TaxID)

	name := party.CreateElement("cac:PartyName")
	cbc(name, "Name", company.Name)

	writePostalAddress(party, company.Address, company.Country)
}

// writePostalAddress agrega cac:PostalAddress cuando hay dirección o país.
func writePostalAddress(party *etree.Element, address, country string) {
	if address == "" && country == "" {
		return
	}
	addr := party.CreateElement("cac:PostalAddress")
	if address != "" {
		cbc(addr, "StreetName", address)
	}
	if country != "" {
		c := addr.CreateElement("cac:Country")
		cbc(c, "IdentificationCode", country)
	}
}

func writeCustomerParty(root *etree.Element, customer *entity.Customer) {
	cust := root.CreateElement("cac:AccountingCustomerParty")
	party := cust.CreateElement("cac:Party")

	ident := party.CreateElement("cac:PartyIdentification")
	cbc(ident, "ID", customer.TaxID)

	name := party.CreateElement("cac:PartyName")
	cbc(name, "Name", customer.Name)

	writePostalAddress(party, customer.Address, customer.Country)
}

// writeTaxTotal escribe cac:TaxTotal con un cac:TaxSubtotal por tramo de
// impuesto del resultado final.
func writeTaxTotal(root *etree.Element, currency string, final pricing.Amount) {
	taxTotal := root.CreateElement("cac:TaxTotal")
	cbcAmount(taxTotal, "TaxAmount", final.Tax, currency)

	for _, t := range final.Taxes {
		sub := taxTotal.CreateElement("cac:TaxSubtotal")
		cbcAmount(sub, "TaxableAmount", final.Base, currency)
		cbcAmount(sub, "TaxAmount", t.Amount, currency)
		cat := sub.CreateElement("cac:TaxCategory")
		cbc(cat, "ID", t.Name)
		cbc(cat, "Percent", t.Rate.String())
	}
}

func writeMonetaryTotal(root *etree.Element, currency string, amounts *pricing.SaleAmounts) {
	total := root.CreateElement("cac:LegalMonetaryTotal")
	cbcAmount(total, "LineExtensionAmount", amounts.Final.Gross, currency)
	cbcAmount(total, "AllowanceTotalAmount", amounts.Final.Discount, currency)
	cbcAmount(total, "TaxExclusiveAmount", amounts.Final.Base, currency)
	cbcAmount(total, "TaxInclusiveAmount", amounts.Final.Total, currency)
	cbcAmount(total, "PayableAmount", amounts.Final.Total.Add(amounts.Shipment.Total), currency)
}

// writeLines escribe una cac:InvoiceLine por ítem público del árbol. Los
// privados no se exportan: ya están plegados en el monto del padre.
func writeLines(root *etree.Element, items []*entity.SaleItem, amounts *pricing.SaleAmounts, currency string, lineNum *int) {
	for _, it := range items {
		if it.Private {
			continue
		}
		a, ok := amounts.Items[it.ID]
		if !ok {
			continue
		}
		*lineNum++
		line := root.CreateElement("cac:InvoiceLine")
		cbc(line, "ID", strconv.Itoa(*lineNum))
		qty := cbc(line, "InvoicedQuantity", it.Quantity.String())
		qty.CreateAttr("unitCode", "EA")
		cbcAmount(line, "LineExtensionAmount", a.Base, currency)

		item := line.CreateElement("cac:Item")
		cbc(item, "Description", it.Designation)
		if it.ProductID != "" {
			sellerID := item.CreateElement("cac:SellersItemIdentification")
			cbc(sellerID, "ID", it.ProductID)
		}

		price := line.CreateElement("cac:Price")
		cbcAmount(price, "PriceAmount", a.Unit, currency)

		writeLines(root, it.Children, amounts, currency, lineNum)
	}
}

func writeShipmentLine(root *etree.Element, shipment *entity.Shipment, amount pricing.Amount, currency string, lineNum int) {
	designation := shipment.Designation
	if designation == "" {
		designation = "Envío"
	}
	line := root.CreateElement("cac:InvoiceLine")
	cbc(line, "ID", strconv.Itoa(lineNum))
	qty := cbc(line, "InvoicedQuantity", "1")
	qty.CreateAttr("unitCode", "EA")
	cbcAmount(line, "LineExtensionAmount", amount.Base, currency)

	item := line.CreateElement("cac:Item")
	cbc(item, "Description", designation)

	price := line.CreateElement("cac:Price")
	cbcAmount(price, "PriceAmount", amount.Base, currency)
}

func countPublic(items []*entity.SaleItem) int {
	n := 0
	for _, it := range items {
		if it.Private {
			continue
		}
		n++
		n += countPublic(it.Children)
	}
	return n
}
