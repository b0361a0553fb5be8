package entities

import "strings"

// UnknownCustomerName is shown for interaction logs whose customer reference resolves to nothing
const UnknownCustomerName = "Unknown Customer"

// Customer represents a debtor record owned by the customer store
type Customer struct {
	ID          string       `json:"id" bson:"-" db:"id"`
	FirstName   string       `json:"first_name" bson:"first_name" db:"first_name"`
	MiddleName  string       `json:"middle_name,omitempty" bson:"middle_name,omitempty" db:"middle_name"`
	LastName    string       `json:"last_name" bson:"last_name" db:"last_name"`
	Email       string       `json:"email" bson:"email" db:"email"`
	Phone       string       `json:"phone" bson:"mob_number" db:"mob_number"`
	Address     Address      `json:"address" bson:",inline"`
	DebtDetails DebtDetails  `json:"debt_details" bson:"debt_details"`
	PaymentPlan *PaymentPlan `json:"payment_plan,omitempty" bson:"payment_plan,omitempty"`
}

// Address holds the postal address fields of a customer
type Address struct {
	HouseNumber string `json:"house_number" bson:"house_number" db:"house_number"`
	StreetName  string `json:"street_name" bson:"street_name" db:"street_name"`
	Suburb      string `json:"suburb" bson:"suburb" db:"suburb"`
	State       string `json:"state" bson:"state" db:"state"`
	PostCode    string `json:"post_code" bson:"post_code" db:"post_code"`
}

// DebtDetails holds the outstanding balance of a customer
type DebtDetails struct {
	TotalOutstanding float64 `json:"total_outstanding" bson:"total_outstanding" db:"total_outstanding"`
}

// PaymentPlan is an agreed repayment schedule
type PaymentPlan struct {
	PaymentReferenceNumber string             `json:"payment_reference_number" bson:"payment_reference_number"`
	PaymentSchedule        []ScheduledPayment `json:"payment_schedule" bson:"payment_schedule"`
}

// ScheduledPayment is a single installment of a payment plan
type ScheduledPayment struct {
	PaymentDate   string  `json:"payment_date" bson:"payment_date"`
	Amount        float64 `json:"amount" bson:"amount"`
	PaymentStatus string  `json:"payment_status" bson:"payment_status"`
}

// DisplayName returns "first last" as shown next to interaction rows
func (c *Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// MatchesFragments reports whether the customer satisfies every supplied fragment.
// Each name token must appear in the first or the last name; email and phone are
// matched against their own field. Matching is case-insensitive substring matching
// and empty fragments are ignored.
func (c *Customer) MatchesFragments(nameTokens []string, email, phone string) bool {
	first := strings.ToLower(c.FirstName)
	last := strings.ToLower(c.LastName)

	for _, token := range nameTokens {
		token = strings.ToLower(token)
		if token == "" {
			continue
		}
		if !strings.Contains(first, token) && !strings.Contains(last, token) {
			return false
		}
	}

	if email != "" && !strings.Contains(strings.ToLower(c.Email), strings.ToLower(email)) {
		return false
	}

	if phone != "" && !strings.Contains(strings.ToLower(c.Phone), strings.ToLower(phone)) {
		return false
	}

	return true
}
