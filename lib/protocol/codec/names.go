package codec

import "fmt"

var messageTypeNames = map[int32]string{
	ErrorMessageType:                        "Error",
	ClientAuthenticationRequestMessageType:  "Client.Authentication",
	ClientAuthenticationResponseMessageType: "Client.Authentication.Response",
	ClientPingRequestMessageType:            "Client.Ping",
	ClientPingResponseMessageType:           "Client.Ping.Response",
	MapPutRequestMessageType:                "Map.Put",
	MapPutResponseMessageType:               "Map.Put.Response",
	MapGetRequestMessageType:                "Map.Get",
	MapGetResponseMessageType:               "Map.Get.Response",
	MapRemoveRequestMessageType:             "Map.Remove",
	MapRemoveResponseMessageType:            "Map.Remove.Response",
	MapEntrySetRequestMessageType:           "Map.EntrySet",
	MapEntrySetResponseMessageType:          "Map.EntrySet.Response",
	MapSizeRequestMessageType:               "Map.Size",
	MapSizeResponseMessageType:              "Map.Size.Response",
	MapPutAllRequestMessageType:             "Map.PutAll",
	MapPutAllResponseMessageType:            "Map.PutAll.Response",
}

// MessageTypeName returns the name of a message type implemented by this package,
// unknown types are printed as hex
func MessageTypeName(messageType int32) string {
	if name, ok := messageTypeNames[messageType]; ok {
		return name
	}
	return fmt.Sprintf("0x%06x", messageType)
}

// ServiceID returns the service part of a message type, 0 for the client service, 1 for maps
func ServiceID(messageType int32) int32 {
	return (messageType >> 16) & 0xFF
}
