// Заполняет базу демонстрационными данными для ручного тестирования API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"importserver/database"
)

var frameBrands = []string{"RayBan", "Police", "Gucci", "Persol", "Oakley", "Carrera"}

var supplierNames = []string{
	"Essilor", "Hoya", "Zeiss Maroc", "Maroc Telecom", "LYDEC", "Generale d'Optique",
}

func main() {
	dbPath := flag.String("db", "import.db", "путь к базе данных")
	clients := flag.Int("clients", 50, "сколько клиентов создать")
	invoices := flag.Int("invoices", 30, "сколько фактур создать")
	seed := flag.Int64("seed", 0, "зерно генератора (0 = случайное)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	db, err := database.NewStoreDB(*dbPath)
	if err != nil {
		log.Fatalf("✗ Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	for _, name := range supplierNames {
		if _, err := db.CreateSupplier(name, gofakeit.Phone(), gofakeit.Email()); err != nil {
			log.Printf("пропуск поставщика %s: %v", name, err)
		}
	}
	log.Printf("✓ Поставщики: %d", len(supplierNames))

	created := make([]*database.Client, 0, *clients)
	for i := 0; i < *clients; i++ {
		c, err := db.CreateClient(&database.Client{
			Code:  fmt.Sprintf("C%04d", i+1),
			Name:  gofakeit.Name(),
			Phone: gofakeit.Phone(),
			Email: gofakeit.Email(),
		})
		if err != nil {
			log.Printf("пропуск клиента %d: %v", i+1, err)
			continue
		}
		created = append(created, c)
	}
	log.Printf("✓ Клиенты: %d", len(created))

	count := 0
	for i := 0; i < *invoices && len(created) > 0; i++ {
		client := created[gofakeit.Number(0, len(created)-1)]
		total := float64(gofakeit.Number(300, 4000))
		day := time.Now().AddDate(0, 0, -gofakeit.Number(0, 365))
		brand := frameBrands[gofakeit.Number(0, len(frameBrands)-1)]

		_, err := db.CreateSalesInvoice(&database.SalesInvoice{
			Number:   fmt.Sprintf("F-%d-%03d", day.Year(), i+1),
			ClientID: client.ID,
			Date:     &day,
			TotalTTC: total,
			Status:   database.SaleStatusInvoice,
			Lines: []database.SalesInvoiceLine{
				{Designation: "Monture " + brand, Quantity: 1, UnitPrice: total, Total: total},
			},
		})
		if err != nil {
			log.Printf("пропуск фактуры %d: %v", i+1, err)
			continue
		}
		count++
	}
	log.Printf("✓ Фактуры: %d", count)
	log.Println("✓ Демо-данные готовы")
}
