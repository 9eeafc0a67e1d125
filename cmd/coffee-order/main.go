// Command coffee-order собирает заказ из витрины и печатает его с ценой.
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// buildShowcaseOrder — большой холодный латте на овсяном молоке с карамелью.
func buildShowcaseOrder() (domain.Order, error) {
	return domain.NewOrderBuilder().
		SetBase("latte").
		SetSize("large").
		SetMilk("oat").
		AddSyrup("caramel").
		SetSugar(3).
		SetIced(true).
		Build()
}

func printOrder(w io.Writer, order domain.Order) error {
	_, err := fmt.Fprintf(w, "%s\nprice: %s\n", order, domain.FormatMinor(order.PriceMinor()))
	return err
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	order, err := buildShowcaseOrder()
	if err != nil {
		log.WithError(err).Fatal("failed to build order")
	}
	if err := printOrder(os.Stdout, order); err != nil {
		log.WithError(err).Fatal("failed to print order")
	}
}
