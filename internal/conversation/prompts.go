package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"contribot/internal/core"
)

const (
	yearPrefix     = "year:"
	monthPrefix    = "month:"
	categoryPrefix = "category:"
	morePrefix     = "more:"

	TokenMoreYes = morePrefix + "yes"
	TokenMoreNo  = morePrefix + "no"
)

const (
	textCancelled       = "Operation cancelled. Type /start to begin again."
	textNothingToCancel = "There is nothing to cancel. Type /start to record a contribution."
	textInvalidChoice   = "Please choose one of the options below:"
	textInvalidAmount   = "Please enter a valid amount (numbers only):"
	textNeedPhoto       = "Please upload a screenshot (photo) of your contribution:"
	textEmptyMember     = "Please enter the family member's name:"
	textNextMember      = "Please enter the next family member's name:"
	textAddAnother      = "Do you want to add another family member?"
	textStartAgain      = "Type /start to add another contribution."
	textSaveFailed      = "❌ Sorry, something went wrong while saving your contribution. Please try again, or type /cancel to start over."
	textDownloadFailed  = "❌ Sorry, I couldn't download that photo. Please send it again:"
)

func YearToken(year int) string { return yearPrefix + strconv.Itoa(year) }

func MonthToken(m core.Month) string { return monthPrefix + string(m) }

func CategoryToken(c core.Category) string { return categoryPrefix + string(c) }

func greeting(firstName, botName string) string {
	if strings.TrimSpace(firstName) == "" {
		firstName = "there"
	}
	return fmt.Sprintf("Hello %s! 👋\n\nWelcome to %s! I'll help you record your contributions.\n\nLet's start by selecting the year:", firstName, botName)
}

func yearOptions(years []int) []Option {
	opts := make([]Option, 0, len(years))
	for _, y := range years {
		opts = append(opts, Option{Label: strconv.Itoa(y), Token: YearToken(y)})
	}
	return opts
}

func monthOptions() []Option {
	opts := make([]Option, 0, len(core.Months))
	for _, m := range core.Months {
		opts = append(opts, Option{Label: string(m), Token: MonthToken(m)})
	}
	return opts
}

func categoryOptions() []Option {
	return []Option{
		{Label: "Self", Token: CategoryToken(core.CategorySelf)},
		{Label: "Family Members", Token: CategoryToken(core.CategoryFamily)},
	}
}

func moreOptions() []Option {
	return []Option{
		{Label: "Yes", Token: TokenMoreYes},
		{Label: "No", Token: TokenMoreNo},
	}
}

func (m *Machine) yearMessage(text string) Message {
	return Message{Text: text, Options: yearOptions(m.years), Columns: 2}
}

func monthMessage(text string) Message {
	return Message{Text: text, Options: monthOptions(), Columns: 3}
}

func categoryMessage(text string) Message {
	return Message{Text: text, Options: categoryOptions(), Columns: 1}
}

func moreMessage(text string) Message {
	return Message{Text: text, Options: moreOptions(), Columns: 1}
}

func selfSummary(c core.Contribution) string {
	var b strings.Builder
	b.WriteString("✅ Your contribution has been successfully recorded!\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "Year: %d\n", c.Year)
	fmt.Fprintf(&b, "Month: %s\n", c.Month)
	fmt.Fprintf(&b, "Type: %s\n", c.Category)
	b.WriteString("Member: Self\n")
	fmt.Fprintf(&b, "Amount: %s\n", c.Amount)
	b.WriteString("Screenshot: Saved\n\n")
	b.WriteString(textStartAgain)
	return b.String()
}

func familySummary(cs []core.Contribution) string {
	var b strings.Builder
	b.WriteString("✅ All family contributions recorded successfully!\n\n")
	b.WriteString("Summary:\n")
	if len(cs) > 0 {
		fmt.Fprintf(&b, "Year: %d\nMonth: %s\n\n", cs[0].Year, cs[0].Month)
	}
	for _, c := range cs {
		fmt.Fprintf(&b, "Member: %s\n", c.Member())
		fmt.Fprintf(&b, "Amount: %s\n", c.Amount)
		b.WriteString("Screenshot: Saved\n\n")
	}
	b.WriteString(textStartAgain)
	return b.String()
}
