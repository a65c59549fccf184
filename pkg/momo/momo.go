// Package momo describes the wallet gateway's v2 wire contract and provides
// a client for its payment-creation endpoint.
package momo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultSuccess is the resultCode the gateway reports for a successful call.
const ResultSuccess = 0

// DefaultRequestType is the request type for wallet capture payments.
const DefaultRequestType = "captureMoMoWallet"

// CreatePaymentRequest is the body POSTed to the gateway's create endpoint.
type CreatePaymentRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	ReturnURL   string `json:"returnUrl"`
	NotifyURL   string `json:"notifyUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

// SignedValues returns the fields covered by the request signature, keyed
// by wire name.
func (r CreatePaymentRequest) SignedValues() map[string]string {
	return map[string]string{
		"accessKey":   r.AccessKey,
		"amount":      fmt.Sprintf("%d", r.Amount),
		"extraData":   r.ExtraData,
		"orderId":     r.OrderID,
		"orderInfo":   r.OrderInfo,
		"partnerCode": r.PartnerCode,
		"requestId":   r.RequestID,
		"returnUrl":   r.ReturnURL,
		"notifyUrl":   r.NotifyURL,
	}
}

// CreatePaymentResponse is the gateway's answer to a create call.
type CreatePaymentResponse struct {
	PartnerCode  string `json:"partnerCode"`
	RequestID    string `json:"requestId"`
	OrderID      string `json:"orderId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
}

// Value is a notification field. The gateway sends some fields as JSON
// numbers and others as strings; Value keeps the literal text of either so
// that it can be canonicalized exactly as received.
type Value string

// UnmarshalJSON accepts a JSON string, number, boolean or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("momo: unexpected JSON value %s", data)
	}
	*v = Value(data)
	return nil
}

// String returns the literal text.
func (v Value) String() string {
	return string(v)
}

// Notification is the asynchronous payment result the gateway POSTs to the
// notify URL.
type Notification struct {
	PartnerCode  Value `json:"partnerCode"`
	OrderID      Value `json:"orderId"`
	RequestID    Value `json:"requestId"`
	Amount       Value `json:"amount"`
	OrderInfo    Value `json:"orderInfo"`
	OrderType    Value `json:"orderType"`
	TransID      Value `json:"transId"`
	ResultCode   Value `json:"resultCode"`
	Message      Value `json:"message"`
	PayType      Value `json:"payType"`
	ResponseTime Value `json:"responseTime"`
	ExtraData    Value `json:"extraData"`
	Signature    Value `json:"signature"`
}

// SignedValues returns the fields covered by the notification signature,
// keyed by wire name. accessKey is not part of the payload and is supplied
// by the receiver.
func (n Notification) SignedValues(accessKey string) map[string]string {
	return map[string]string{
		"accessKey":    accessKey,
		"amount":       n.Amount.String(),
		"extraData":    n.ExtraData.String(),
		"message":      n.Message.String(),
		"orderId":      n.OrderID.String(),
		"orderInfo":    n.OrderInfo.String(),
		"orderType":    n.OrderType.String(),
		"partnerCode":  n.PartnerCode.String(),
		"payType":      n.PayType.String(),
		"requestId":    n.RequestID.String(),
		"responseTime": n.ResponseTime.String(),
		"resultCode":   n.ResultCode.String(),
		"transId":      n.TransID.String(),
	}
}

// Succeeded reports whether the notification announces a completed payment.
func (n Notification) Succeeded() bool {
	return n.ResultCode == "0"
}
