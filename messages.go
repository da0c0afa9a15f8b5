package gxxws

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultLanguage is used until Localize is called.
var defaultLanguage = language.AmericanEnglish

// newPrinter returns a printer for the given language.
func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.communication_closed", "communication closed")
	message.SetString(language.AmericanEnglish, "msg.no_response", "no response received")
	message.SetString(language.AmericanEnglish, "msg.response_not_ok", "device response is not ok")
	message.SetString(language.AmericanEnglish, "msg.connection_string", "connection string format incorrect")
	message.SetString(language.AmericanEnglish, "msg.decode_failed", "%s can't be retrieved, the response was [%s]")
	message.SetString(language.AmericanEnglish, "msg.target_not_supported", "%s is not supported")
	message.SetString(language.AmericanEnglish, "msg.wait_for_command", "WaitForCommand(%s, %dms)")
	message.SetString(language.AmericanEnglish, "msg.receive", "Receive(%d bytes)")
	message.SetString(language.AmericanEnglish, "msg.clear_buffer", "ClearBuffer")
	message.SetString(language.AmericanEnglish, "msg.opening", "Opening %s")
	message.SetString(language.AmericanEnglish, "msg.opened", "%s opened. Session %s")
	message.SetString(language.AmericanEnglish, "msg.open_failed", "Opening %s failed: %v")
	message.SetString(language.AmericanEnglish, "msg.closing", "Closing %s")
	message.SetString(language.AmericanEnglish, "msg.closed", "%s closed")
	message.SetString(language.AmericanEnglish, "msg.invalid_line", "Invalid line %q: %v")
	message.SetString(language.AmericanEnglish, "msg.no_serial_port_selected", "no serial port selected")

	// --- German (de) ---
	message.SetString(language.German, "msg.communication_closed", "Kommunikation geschlossen")
	message.SetString(language.German, "msg.no_response", "keine Antwort empfangen")
	message.SetString(language.German, "msg.response_not_ok", "Geräteantwort ist nicht OK")
	message.SetString(language.German, "msg.connection_string", "Format der Verbindungszeichenfolge ist falsch")
	message.SetString(language.German, "msg.decode_failed", "%s kann nicht gelesen werden, die Antwort war [%s]")
	message.SetString(language.German, "msg.target_not_supported", "%s wird nicht unterstützt")
	message.SetString(language.German, "msg.wait_for_command", "WaitForCommand(%s, %dms)")
	message.SetString(language.German, "msg.receive", "Receive(%d Bytes)")
	message.SetString(language.German, "msg.clear_buffer", "ClearBuffer")
	message.SetString(language.German, "msg.opening", "%s wird geöffnet")
	message.SetString(language.German, "msg.opened", "%s geöffnet. Sitzung %s")
	message.SetString(language.German, "msg.open_failed", "Öffnen von %s fehlgeschlagen: %v")
	message.SetString(language.German, "msg.closing", "%s wird geschlossen")
	message.SetString(language.German, "msg.closed", "%s wurde geschlossen")
	message.SetString(language.German, "msg.invalid_line", "Ungültige Zeile %q: %v")
	message.SetString(language.German, "msg.no_serial_port_selected", "kein serieller Port ausgewählt")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.communication_closed", "yhteys suljettu")
	message.SetString(language.Finnish, "msg.no_response", "vastausta ei vastaanotettu")
	message.SetString(language.Finnish, "msg.response_not_ok", "laitteen vastaus ei ole ok")
	message.SetString(language.Finnish, "msg.connection_string", "yhteysmerkkijonon muoto on virheellinen")
	message.SetString(language.Finnish, "msg.decode_failed", "%s ei voida lukea, vastaus oli [%s]")
	message.SetString(language.Finnish, "msg.target_not_supported", "%s ei ole tuettu")
	message.SetString(language.Finnish, "msg.wait_for_command", "WaitForCommand(%s, %dms)")
	message.SetString(language.Finnish, "msg.receive", "Receive(%d tavua)")
	message.SetString(language.Finnish, "msg.clear_buffer", "ClearBuffer")
	message.SetString(language.Finnish, "msg.opening", "Avataan %s")
	message.SetString(language.Finnish, "msg.opened", "%s avattu. Istunto %s")
	message.SetString(language.Finnish, "msg.open_failed", "Kohteen %s avaus epäonnistui: %v")
	message.SetString(language.Finnish, "msg.closing", "Suljetaan %s")
	message.SetString(language.Finnish, "msg.closed", "%s suljettu")
	message.SetString(language.Finnish, "msg.invalid_line", "Virheellinen rivi %q: %v")
	message.SetString(language.Finnish, "msg.no_serial_port_selected", "sarjaporttia ei ole valittu")
}
