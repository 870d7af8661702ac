package notify

import (
	"fmt"
	"strings"

	"secondserving/internal/models"
)

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No description provided"
	}
	return s
}

func SignupOTP(account *models.Account, code string) Message {
	return Message{
		Phone:          account.PhoneNumber,
		TelegramChatID: account.TelegramChatID,
		Name:           account.FullName,
		Body: fmt.Sprintf("*%s*, Your OTP for signing up on Second Serving is: %s",
			displayName(account.FullName, "User"), code),
	}
}

func ResetOTP(account *models.Account, code string) Message {
	return Message{
		Phone:          account.PhoneNumber,
		TelegramChatID: account.TelegramChatID,
		Name:           account.FullName,
		Body: fmt.Sprintf("*%s*, Your password reset OTP for Second Serving is: %s. It expires in 10 minutes.",
			displayName(account.FullName, "User"), code),
	}
}

func VolunteerWanted(volunteer *models.Account, donation *models.Donation, acceptURL string) Message {
	msg := volunteerBroadcast(donation, acceptURL)
	msg.Phone = volunteer.PhoneNumber
	msg.TelegramChatID = volunteer.TelegramChatID
	msg.Name = volunteer.FullName
	msg.Body = fmt.Sprintf("*%s*, %s", displayName(volunteer.FullName, "Volunteer"), msg.Body)
	return msg
}

// VolunteerGroupPost is the same request posted to the volunteer group chat.
func VolunteerGroupPost(donation *models.Donation, acceptURL string) Message {
	return volunteerBroadcast(donation, acceptURL)
}

func volunteerBroadcast(donation *models.Donation, acceptURL string) Message {
	return Message{
		Body: fmt.Sprintf("A donation near your location needs a volunteer!\n\n"+
			"Category: %s\nDescription: %s\nQuantity: %g %s\nLocation: %s\n\nAccept the pickup:\n%s",
			donation.FoodDetails.Category,
			orNone(donation.FoodDetails.Description),
			donation.FoodDetails.Quantity, donation.FoodDetails.Unit,
			donation.PickupLocation.Address,
			acceptURL),
		ActionURL:   acceptURL,
		ActionLabel: "Accept Donation",
	}
}

func DonorDelivering(spot *models.HungerSpot, donor *models.Account, donation *models.Donation) Message {
	return Message{
		Phone: spot.ContactPerson.Phone,
		Name:  spot.ContactPerson.Name,
		Body: fmt.Sprintf("*%s*, Donation Incoming!\n\nDonor: %s\nContact: %s\n\n"+
			"Category: %s\nDescription: %s\nQuantity: %g %s\nPickup: %s\n\n"+
			"The donor will deliver directly to your location.",
			displayName(spot.ContactPerson.Name, "Contact Person"),
			donor.FullName, donor.PhoneNumber,
			donation.FoodDetails.Category,
			orNone(donation.FoodDetails.Description),
			donation.FoodDetails.Quantity, donation.FoodDetails.Unit,
			donation.PickupLocation.Address),
	}
}

func AcceptedToDonor(donor, volunteer *models.Account, donation *models.Donation) Message {
	return Message{
		Phone:          donor.PhoneNumber,
		TelegramChatID: donor.TelegramChatID,
		Name:           donor.FullName,
		Body: fmt.Sprintf("*%s*, a volunteer is on the way for your %s donation.\n\nVolunteer: %s\nContact: %s",
			displayName(donor.FullName, "Donor"),
			donation.FoodDetails.Category,
			volunteer.FullName, volunteer.PhoneNumber),
	}
}

func AcceptedToHungerSpot(spot *models.HungerSpot, volunteer *models.Account, donation *models.Donation) Message {
	return Message{
		Phone: spot.ContactPerson.Phone,
		Name:  spot.ContactPerson.Name,
		Body: fmt.Sprintf("*%s*, Donation Incoming!\n\nVolunteer: %s\nContact: %s\n\n"+
			"Category: %s\nQuantity: %g %s\nPickup: %s",
			displayName(spot.ContactPerson.Name, "Contact Person"),
			volunteer.FullName, volunteer.PhoneNumber,
			donation.FoodDetails.Category,
			donation.FoodDetails.Quantity, donation.FoodDetails.Unit,
			donation.PickupLocation.Address),
	}
}
