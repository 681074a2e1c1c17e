// Structure of courier Order Model in Welzyne.

package entity

// Delivery statuses an order moves through on the admin dashboard.
const (
	OrderPlaced         = "Order Placed"
	OrderProcessing     = "Processing"
	OrderInTransit      = "In Transit"
	OrderOutForDelivery = "Out for Delivery"
	OrderDelivered      = "Delivered"
)

// Payment statuses of an order.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
)

// Saved in DB as order:<id>
// JSON field names mirror the dashboard contract.
type Order struct {
	ID               string `json:"id" redis:"id" valid:"-"`
	Customer         string `json:"customer" redis:"customer" valid:"required,type(string),stringlength(2|50)~customer:Couldn't validate Customer name"`
	Email            string `json:"email" redis:"email" valid:"required,email~email:Couldn't validate Email"`
	Status           string `json:"status" redis:"status" valid:"-"`
	Date             string `json:"date" redis:"date" valid:"-"`
	Amount           string `json:"amount" redis:"amount" valid:"required,numeric~amount:Couldn't validate Amount"`
	Destination      string `json:"destination" redis:"destination" valid:"required~destination:Delivery location is mandatory"`
	PickupLocation   string `json:"pickupLocation" redis:"pickup_location" valid:"required~pickupLocation:Pickup location is mandatory"`
	CourierType      string `json:"courierType" redis:"courier_type" valid:"in(standard|express|same-day)~courierType:Unknown courier type"`
	PaymentMode      string `json:"paymentMode" redis:"payment_mode" valid:"in(mpesa|cash)~paymentMode:Unknown payment mode"`
	MpesaNumber      string `json:"mpesaNumber,omitempty" redis:"mpesa_number" valid:"mpesanumber~mpesaNumber:Couldn't validate M-Pesa number,optional"`
	PackageDetails   string `json:"packageDetails" redis:"package_details" valid:"required~packageDetails:Package details are mandatory"`
	WholeBooking     bool   `json:"wholeBooking" redis:"whole_booking" valid:"-"`
	PaymentStatus    string `json:"paymentStatus" redis:"payment_status" valid:"-"`
	PaymentConfirmed bool   `json:"paymentConfirmed" redis:"payment_confirmed" valid:"-"`
}
