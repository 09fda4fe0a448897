package terminal

import (
	"context"
	"errors"
	"strconv"

	"github.com/Lixing-Zhang/terminal-pos/internal/repository"
	"github.com/Lixing-Zhang/terminal-pos/internal/service"
)

func (s *Session) salesPanel(ctx context.Context, username string) error {
	order := service.NewOrder(s.svc.Catalog)
	s.logger.DebugContext(ctx, "order session started", "session", order.ID(), "user", username)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s\n  PLACE ORDER\n%s\n", rule, rule)
		s.printf("1. View menu\n2. Add product to cart\n3. View cart\n4. Pay\n5. Cancel and exit\n")

		choice, err := s.prompt("\nSelect an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.showMenu()
		case "2":
			if err := s.addToCart(order); err != nil {
				return err
			}
		case "3":
			s.showCart(order)
		case "4":
			if s.pay(ctx, username, order) {
				return nil
			}
		case "5":
			order.Clear()
			s.printf("\nOrder cancelled\n")
			s.logger.InfoContext(ctx, "order cancelled", "session", order.ID(), "user", username)
			return nil
		default:
			s.printf("Invalid option\n")
		}
	}
}

func (s *Session) addToCart(order *service.Order) error {
	s.showMenu()

	name, err := s.prompt("\nProduct name: ")
	if err != nil || name == "" {
		return err
	}

	text, err := s.prompt("Quantity: ")
	if err != nil {
		return err
	}
	quantity, convErr := strconv.Atoi(text)
	if convErr != nil {
		s.printf("Invalid quantity\n")
		return nil
	}

	switch err := order.AddItem(name, quantity); {
	case errors.Is(err, service.ErrInvalidQuantity):
		s.printf("Quantity must be greater than 0\n")
	case errors.Is(err, service.ErrQuantityTooLarge):
		s.printf("Quantity too large\n")
	case errors.Is(err, service.ErrProductNotFound):
		s.printf("Product not found: %s\n", name)
	case err != nil:
		s.printf("Error: %v\n", err)
	default:
		s.printf("Added: %dx %s\n", quantity, name)
	}
	return nil
}

func (s *Session) showCart(order *service.Order) {
	if order.IsEmpty() {
		s.printf("\nThe cart is empty\n")
		return
	}

	lines, err := order.Lines()
	if err != nil {
		s.printf("The cart holds a product that is no longer sold: %v\n", err)
		return
	}
	total, err := order.Total()
	if err != nil {
		s.printf("Error: %v\n", err)
		return
	}

	s.printf("\n%s\n  SHOPPING CART\n%s\n", rule, rule)
	for _, l := range lines {
		s.printf("  %dx %-35s %s = %s\n", l.Quantity, l.Name, s.money(l.UnitPrice), s.money(l.Subtotal))
	}
	s.printf("%s\n  TOTAL: %s\n", rule, s.money(total))
}

// pay reports whether the sale was recorded and the session is over
func (s *Session) pay(ctx context.Context, username string, order *service.Order) bool {
	if order.IsEmpty() {
		s.printf("No products in the order\n")
		return false
	}

	s.printf("\nProcessing payment...\n")
	tx, err := s.svc.Checkout.Pay(ctx, username, order)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPersistence):
			s.printf("The sale could not be saved: %v\n", err)
			s.printf("The order was kept, please try again.\n")
		case errors.Is(err, service.ErrProductNotFound):
			s.printf("The cart holds a product that is no longer sold: %v\n", err)
		default:
			s.printf("Payment failed: %v\n", err)
		}
		return false
	}

	if s.opts.OnSale != nil {
		s.opts.OnSale()
	}

	s.printf("Payment processed. Transaction %s, total %s%s\n", tx.ID, tx.Currency, tx.Total.StringFixed(2))
	s.printf("Sending order to the kitchen...\n")
	s.printf("Thank you for your purchase!\n")
	return true
}
