package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ai-expense-tracker/internal/client"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("addexpense", flag.ContinueOnError)
	fs.SetOutput(stderr)

	server := fs.String("server", "http://localhost:3000", "Base URL of the expense service")
	list := fs.Bool("list", false, "List stored expenses instead of adding one")
	deleteID := fs.Int64("delete", 0, "Delete the expense with the given id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c := client.New(*server)
	ctx := context.Background()

	if *list {
		return listExpenses(ctx, c, stdout)
	}

	if *deleteID > 0 {
		if err := c.DeleteExpense(ctx, *deleteID); err != nil {
			return fmt.Errorf("failed to delete expense %d: %w", *deleteID, err)
		}
		fmt.Fprintf(stdout, "Expense %d deleted\n", *deleteID)
		return nil
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		// Fall back to reading one line from stdin (pipes, scripts)
		line, err := readLine(stdin)
		if err != nil {
			fmt.Fprintln(stdout, "Usage: addexpense [-server <url>] <expense text>")
			fs.PrintDefaults()
			return fmt.Errorf("missing expense text")
		}
		text = strings.TrimSpace(line)
	}
	if text == "" {
		return fmt.Errorf("missing expense text")
	}

	expense, err := c.AddExpense(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to add expense: %w", err)
	}

	merchant := "-"
	if expense.Merchant != nil {
		merchant = *expense.Merchant
	}
	fmt.Fprintf(stdout, "Added expense %d: %.2f %s | %s | %s (merchant: %s)\n",
		expense.ID, expense.Amount, expense.Currency, expense.Category, expense.Description, merchant)
	return nil
}

func listExpenses(ctx context.Context, c *client.Client, stdout io.Writer) error {
	expenses, err := c.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(expenses) == 0 {
		fmt.Fprintln(stdout, "No expenses recorded")
		return nil
	}

	for _, e := range expenses {
		fmt.Fprintf(stdout, "%d\t%.2f %s\t%s\t%s\t%s\n",
			e.ID, e.Amount, e.Currency, e.Category, e.Description,
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func readLine(stdin io.Reader) (string, error) {
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
