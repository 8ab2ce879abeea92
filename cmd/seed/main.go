// Command seed creates the sales schema and fills it with synthetic
// restaurant data: stores, catalog, customers, and months of sales with
// realistic hourly and weekday demand curves. After loading it publishes a
// sales.imported event so running analytics instances drop their caches.
package main

import (
	"context"
	"database/sql"
	_ "embed"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/nolalabs/analytics/internal/analytics"
	"github.com/nolalabs/analytics/internal/common/config"
	"github.com/nolalabs/analytics/internal/common/db"
	"github.com/nolalabs/analytics/internal/common/kafka"
	"github.com/nolalabs/analytics/internal/common/logger"
)

//go:embed schema.sql
var schemaSQL string

const salesImportedTopic = "sales.imported"

const (
	statusCompleted = analytics.StatusCompleted
	statusCancelled = analytics.StatusCancelled
)

// Demand shaping. Hour weights peak at lunch and dinner; weekday multipliers
// run Monday through Sunday with the weekend lift.
var weekdayMultipliers = [7]float64{0.8, 0.9, 0.95, 1.0, 1.3, 1.5, 1.4}

func hourWeight(hour int) float64 {
	switch {
	case hour < 6:
		return 0.02
	case hour < 11:
		return 0.08
	case hour < 15:
		return 0.35
	case hour < 19:
		return 0.10
	case hour < 23:
		return 0.40
	default:
		return 0.05
	}
}

type channelSpec struct {
	Name   string
	Type   string
	Weight float64
}

var channelSpecs = []channelSpec{
	{"Presencial", "P", 0.40},
	{"iFood", "D", 0.30},
	{"Rappi", "D", 0.15},
	{"Uber Eats", "D", 0.08},
	{"WhatsApp", "D", 0.05},
	{"App Próprio", "D", 0.02},
}

var productCategories = map[string][]string{
	"Burgers":    {"X-Burger", "Cheeseburger", "Bacon Burger", "Double Burger", "Veggie Burger"},
	"Pizzas":     {"Pizza Margherita", "Pizza Calabresa", "Pizza 4 Queijos", "Pizza Portuguesa", "Pizza Frango"},
	"Pratos":     {"Prato Executivo", "Filé", "Frango Grelhado", "Lasanha", "Risoto"},
	"Combos":     {"Combo Família", "Combo Individual", "Combo Duplo", "Combo Kids", "Combo Executivo"},
	"Sobremesas": {"Brownie", "Pudim", "Sorvete", "Petit Gateau", "Torta"},
	"Bebidas":    {"Refrigerante", "Suco", "Água", "Cerveja", "Vinho"},
}

var productSuffixes = []string{"Especial", "Tradicional", "Premium", "Light", "Grande"}

var itemCategories = map[string][]string{
	"Complementos": {"Bacon", "Queijo Cheddar", "Queijo Mussarela", "Ovo", "Alface", "Tomate", "Cebola", "Picles"},
	"Molhos":       {"Molho Barbecue", "Molho Mostarda", "Molho Especial", "Maionese", "Ketchup", "Molho Picante"},
	"Adicionais":   {"Batata Frita", "Onion Rings", "Nuggets", "Salada", "Arroz", "Feijão"},
}

var paymentTypeNames = []string{
	"Dinheiro", "Cartão de Crédito", "Cartão de Débito",
	"PIX", "Vale Refeição", "Vale Alimentação",
}

var discountReasons = []string{
	"Cupom de desconto", "Promoção do dia", "Cliente fidelidade",
	"Desconto gerente", "Primeira compra", "Aniversário",
}

var cityNames = []string{
	"São Paulo", "Rio de Janeiro", "Belo Horizonte", "Porto Alegre",
	"Curitiba", "Florianópolis", "Campinas", "Santos",
}

var stateCodes = []string{"SP", "RJ", "MG", "RS", "PR", "SC"}

var storePrefixes = []string{"Burguer House", "Pizza Palace", "Food Corner", "Quick Bite"}

var deliveryTypes = []string{"DELIVERY", "TAKEOUT", "INDOOR"}
var courierTypes = []string{"PLATFORM", "OWN", "THIRD_PARTY"}

func main() {
	numStores := flag.Int("stores", 50, "number of stores to create")
	numProducts := flag.Int("products", 500, "number of products to create")
	numCustomers := flag.Int("customers", 10000, "number of customers to create")
	months := flag.Int("months", 6, "months of sales history to generate")
	skipSchema := flag.Bool("skip-schema", false, "skip schema creation")
	skipKafka := flag.Bool("skip-kafka", false, "skip publishing the sales.imported event")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load("seed")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("seed")
	rng := rand.New(rand.NewSource(*seed))

	database, err := db.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	if !*skipSchema {
		log.Info("Creating schema...")
		if _, err := database.ExecContext(ctx, schemaSQL); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
	}

	g := &generator{db: database, rng: rng, log: log}

	if err := g.run(ctx, *numStores, *numProducts, *numCustomers, *months); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Infof("Loaded %d sales across %d stores", g.salesCount, *numStores)

	if !*skipKafka {
		producer := kafka.NewProducer(cfg.Kafka, log)
		defer producer.Close()

		event := analytics.SalesImportedEvent{
			EventID:    uuid.NewString(),
			Source:     "seed",
			SalesCount: g.salesCount,
			LoadedAt:   time.Now().UTC(),
		}
		if err := producer.PublishEvent(ctx, salesImportedTopic, event.EventID, event); err != nil {
			log.Errorf("Failed to publish %s event: %v", salesImportedTopic, err)
		}
	}
}

type generator struct {
	db  *db.DB
	rng *rand.Rand
	log logger.Logger

	brandID      int64
	subBrandIDs  []int64
	channels     []seededChannel
	storeIDs     []int64
	productIDs   []int64
	itemIDs      []int64
	optionGroups []int64
	customerIDs  []int64
	paymentTypes []int64

	salesCount int64
}

type seededChannel struct {
	ID     int64
	Type   string
	Weight float64
}

func (g *generator) run(ctx context.Context, stores, products, customers, months int) error {
	if err := g.seedBase(ctx); err != nil {
		return err
	}
	if err := g.seedStores(ctx, stores); err != nil {
		return err
	}
	if err := g.seedCatalog(ctx, products); err != nil {
		return err
	}
	if err := g.seedCustomers(ctx, customers); err != nil {
		return err
	}
	return g.seedSales(ctx, months)
}

func (g *generator) seedBase(ctx context.Context) error {
	g.log.Info("Seeding base data...")

	err := g.db.QueryRowContext(ctx,
		`INSERT INTO brands (name) VALUES ($1) RETURNING id`, "Nola Restaurants",
	).Scan(&g.brandID)
	if err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}

	for _, name := range []string{"Nola Burger", "Nola Pizza", "Nola Sushi"} {
		var id int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO sub_brands (brand_id, name) VALUES ($1, $2) RETURNING id`,
			g.brandID, name,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert sub-brand: %w", err)
		}
		g.subBrandIDs = append(g.subBrandIDs, id)
	}

	for _, spec := range channelSpecs {
		var id int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO channels (brand_id, name, type, description) VALUES ($1, $2, $3, $4) RETURNING id`,
			g.brandID, spec.Name, spec.Type, "Canal "+spec.Name,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert channel: %w", err)
		}
		g.channels = append(g.channels, seededChannel{ID: id, Type: spec.Type, Weight: spec.Weight})
	}

	for _, name := range paymentTypeNames {
		var id int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO payment_types (brand_id, description) VALUES ($1, $2) RETURNING id`,
			g.brandID, name,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert payment type: %w", err)
		}
		g.paymentTypes = append(g.paymentTypes, id)
	}

	return nil
}

func (g *generator) seedStores(ctx context.Context, count int) error {
	g.log.Infof("Seeding %d stores...", count)

	for i := 0; i < count; i++ {
		city := cityNames[g.rng.Intn(len(cityNames))]
		name := fmt.Sprintf("%s - %s", storePrefixes[g.rng.Intn(len(storePrefixes))], city)
		creationDate := time.Now().AddDate(-2, 0, 0).AddDate(0, 0, g.rng.Intn(540))

		var id int64
		err := g.db.QueryRowContext(ctx, `
			INSERT INTO stores (
				brand_id, sub_brand_id, name, city, state,
				address_number, is_active, is_own, creation_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`,
			g.brandID,
			g.pick(g.subBrandIDs),
			name,
			city,
			stateCodes[g.rng.Intn(len(stateCodes))],
			g.rng.Intn(999)+1,
			true,
			g.rng.Float64() < 0.7,
			creationDate,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert store: %w", err)
		}
		g.storeIDs = append(g.storeIDs, id)
	}

	return nil
}

func (g *generator) seedCatalog(ctx context.Context, numProducts int) error {
	g.log.Infof("Seeding catalog with %d products...", numProducts)

	perCategory := numProducts / len(productCategories)
	for catName, prefixes := range productCategories {
		var catID int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO categories (brand_id, sub_brand_id, name, type) VALUES ($1, $2, $3, 'P') RETURNING id`,
			g.brandID, g.pick(g.subBrandIDs), catName,
		).Scan(&catID)
		if err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}

		for i := 0; i < perCategory; i++ {
			name := fmt.Sprintf("%s %s",
				prefixes[g.rng.Intn(len(prefixes))],
				productSuffixes[g.rng.Intn(len(productSuffixes))],
			)
			var id int64
			err := g.db.QueryRowContext(ctx,
				`INSERT INTO products (brand_id, sub_brand_id, category_id, name) VALUES ($1, $2, $3, $4) RETURNING id`,
				g.brandID, g.pick(g.subBrandIDs), catID, name,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert product: %w", err)
			}
			g.productIDs = append(g.productIDs, id)
		}
	}

	for catName, names := range itemCategories {
		var catID int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO categories (brand_id, sub_brand_id, name, type) VALUES ($1, $2, $3, 'I') RETURNING id`,
			g.brandID, g.pick(g.subBrandIDs), catName,
		).Scan(&catID)
		if err != nil {
			return fmt.Errorf("failed to insert item category: %w", err)
		}

		for _, name := range names {
			var id int64
			err := g.db.QueryRowContext(ctx,
				`INSERT INTO items (brand_id, sub_brand_id, category_id, name) VALUES ($1, $2, $3, $4) RETURNING id`,
				g.brandID, g.pick(g.subBrandIDs), catID, name,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
			g.itemIDs = append(g.itemIDs, id)
		}
	}

	for _, name := range []string{"Adicionais", "Remover", "Ponto da Carne", "Tamanho"} {
		var id int64
		err := g.db.QueryRowContext(ctx,
			`INSERT INTO option_groups (brand_id, sub_brand_id, name) VALUES ($1, $2, $3) RETURNING id`,
			g.brandID, g.pick(g.subBrandIDs), name,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert option group: %w", err)
		}
		g.optionGroups = append(g.optionGroups, id)
	}

	return nil
}

func (g *generator) seedCustomers(ctx context.Context, count int) error {
	g.log.Infof("Seeding %d customers...", count)

	for i := 0; i < count; i++ {
		birth := time.Now().AddDate(-18-g.rng.Intn(52), 0, -g.rng.Intn(365))
		var id int64
		err := g.db.QueryRowContext(ctx, `
			INSERT INTO customers (
				customer_name, email, birth_date, gender,
				agree_terms, receive_promotions_email
			) VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			fmt.Sprintf("Cliente %d", i+1),
			fmt.Sprintf("cliente%d@example.com", i+1),
			birth,
			[]string{"M", "F", "Outro"}[g.rng.Intn(3)],
			g.rng.Float64() < 0.8,
			g.rng.Float64() < 0.6,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", err)
		}
		g.customerIDs = append(g.customerIDs, id)
	}

	return nil
}

func (g *generator) seedSales(ctx context.Context, months int) error {
	g.log.Infof("Seeding %d months of sales...", months)

	end := time.Now()
	day := end.AddDate(0, 0, -30*months)

	hourWeights := make([]float64, 24)
	for h := range hourWeights {
		hourWeights[h] = hourWeight(h)
	}

	for day.Before(end) {
		mult := weekdayMultipliers[mondayIndex(day.Weekday())]

		for _, storeID := range g.storeIDs {
			dailySales := int(g.rng.NormFloat64()*10 + 30*mult)
			if dailySales < 1 {
				dailySales = 1
			}

			for i := 0; i < dailySales; i++ {
				hour := weightedIndex(g.rng, hourWeights)
				saleTime := time.Date(
					day.Year(), day.Month(), day.Day(),
					hour, g.rng.Intn(60), g.rng.Intn(60), 0, time.UTC,
				)
				if err := g.insertSale(ctx, saleTime, storeID); err != nil {
					return err
				}
			}
		}

		day = day.AddDate(0, 0, 1)
		if g.salesCount%10000 < int64(len(g.storeIDs)) {
			g.log.Infof("  %d sales inserted (%s)", g.salesCount, day.Format("2006-01-02"))
		}
	}

	return nil
}

// insertSale writes one sale with its line items, payments and delivery record
// in a single transaction so a partial sale can never land.
func (g *generator) insertSale(ctx context.Context, saleTime time.Time, storeID int64) error {
	channel := g.pickChannel()

	status := statusCompleted
	if g.rng.Float64() < 0.05 {
		status = statusCancelled
	}

	var customerID sql.NullInt64
	if g.rng.Float64() < 0.7 {
		customerID = sql.NullInt64{Int64: g.pick(g.customerIDs), Valid: true}
	}

	type lineItem struct {
		productID int64
		basePrice decimal.Decimal
		total     decimal.Decimal
	}

	numProducts := weightedIndex(g.rng, []float64{0.4, 0.3, 0.2, 0.07, 0.03}) + 1
	lines := make([]lineItem, 0, numProducts)
	totalItems := decimal.Zero

	for i := 0; i < numProducts; i++ {
		base := decimal.NewFromFloat(15 + g.rng.Float64()*70).Round(2)
		total := base
		if g.rng.Float64() < 0.6 {
			for j := 0; j < g.rng.Intn(4)+1; j++ {
				total = total.Add(decimal.NewFromFloat(g.rng.Float64() * 8).Round(2))
			}
		}
		lines = append(lines, lineItem{productID: g.pick(g.productIDs), basePrice: base, total: total})
		totalItems = totalItems.Add(total)
	}

	discount := decimal.Zero
	var discountReason sql.NullString
	if g.rng.Float64() < 0.2 {
		discount = totalItems.Mul(decimal.NewFromFloat(0.05 + g.rng.Float64()*0.20)).Round(2)
		discountReason = sql.NullString{String: discountReasons[g.rng.Intn(len(discountReasons))], Valid: true}
	}

	deliveryFee := decimal.Zero
	if channel.Type == "D" {
		deliveryFee = decimal.NewFromFloat(5 + g.rng.Float64()*10).Round(2)
	}

	totalAmount := totalItems.Sub(discount).Add(deliveryFee)

	var productionSeconds, deliverySeconds sql.NullInt64
	if status == statusCompleted {
		productionSeconds = sql.NullInt64{Int64: int64(g.rng.Intn(2100) + 300), Valid: true}
		if channel.Type == "D" {
			deliverySeconds = sql.NullInt64{Int64: int64(g.rng.Intn(2700) + 900), Valid: true}
		}
	}

	err := g.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var saleID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sales (
				store_id, channel_id, customer_id, cod_sale1, created_at, sale_status_desc,
				total_amount_items, total_discount, delivery_fee, total_amount,
				value_paid, production_seconds, delivery_seconds, discount_reason
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`,
			storeID, channel.ID, customerID, uuid.NewString(), saleTime, status,
			totalItems, discount, deliveryFee, totalAmount,
			totalAmount, productionSeconds, deliverySeconds, discountReason,
		).Scan(&saleID)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}

		for _, line := range lines {
			var productSaleID int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO product_sales (sale_id, product_id, quantity, base_price, total_price)
				VALUES ($1, $2, 1, $3, $4)
				RETURNING id
			`, saleID, line.productID, line.basePrice, line.total).Scan(&productSaleID)
			if err != nil {
				return fmt.Errorf("failed to insert product sale: %w", err)
			}

			extra := line.total.Sub(line.basePrice)
			if extra.IsPositive() {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO item_product_sales (
						product_sale_id, item_id, option_group_id, quantity, additional_price, price
					) VALUES ($1, $2, $3, 1, $4, $4)
				`, productSaleID, g.pick(g.itemIDs), g.pick(g.optionGroups), extra)
				if err != nil {
					return fmt.Errorf("failed to insert customization: %w", err)
				}
			}
		}

		if err := g.insertPayments(ctx, tx, saleID, totalAmount); err != nil {
			return err
		}

		if channel.Type == "D" {
			deliveryStatus := "DELIVERED"
			if status == statusCancelled {
				deliveryStatus = "CANCELLED"
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO delivery_sales (
					sale_id, courier_type, delivery_type, status, delivery_fee, courier_fee
				) VALUES ($1, $2, $3, $4, $5, $6)
			`,
				saleID,
				courierTypes[g.rng.Intn(len(courierTypes))],
				deliveryTypes[g.rng.Intn(len(deliveryTypes))],
				deliveryStatus,
				deliveryFee,
				deliveryFee.Mul(decimal.NewFromFloat(0.3)).Round(2),
			)
			if err != nil {
				return fmt.Errorf("failed to insert delivery sale: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	g.salesCount++
	return nil
}

// insertPayments splits a sale across one or two payments, keeping the sum
// exactly equal to the sale total.
func (g *generator) insertPayments(ctx context.Context, tx *sql.Tx, saleID int64, total decimal.Decimal) error {
	parts := []decimal.Decimal{total}
	if g.rng.Float64() >= 0.9 {
		first := total.Mul(decimal.NewFromFloat(0.3 + g.rng.Float64()*0.4)).Round(2)
		parts = []decimal.Decimal{first, total.Sub(first)}
	}

	for _, value := range parts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (sale_id, payment_type_id, value, is_online)
			VALUES ($1, $2, $3, $4)
		`, saleID, g.pick(g.paymentTypes), value, g.rng.Float64() < 0.6)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	return nil
}

func (g *generator) pick(ids []int64) int64 {
	return ids[g.rng.Intn(len(ids))]
}

func (g *generator) pickChannel() seededChannel {
	weights := make([]float64, len(g.channels))
	for i, ch := range g.channels {
		weights[i] = ch.Weight
	}
	return g.channels[weightedIndex(g.rng, weights)]
}

// weightedIndex samples an index proportionally to weights.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	r := rng.Float64() * sum
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// mondayIndex maps time.Weekday (Sunday=0) onto a Monday-first index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
