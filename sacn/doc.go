/*Package sacn receives streaming ACN (sACN, E1.31) DMX data. The standard can
be obtained here: http://tsp.esta.org/tsp/documents/docs/E1-31-2016.pdf

This is a receive-only implementation: it parses E1.31 data packets, checks
for out-of-order packets (inspecting the sequence number) and hands the DMX
payload of every accepted packet to a callback. Synchronization and per-source
priority arbitration are not implemented; the latest accepted packet wins.

The receiver joins the multicast group of every universe it is started with.
Unicast packets that arrive on the E1.31 port are also processed. Depending on
your operating system, multicast group membership on the default interface may
or may not work; unicast reception works regardless.

Note that the network infrastructure has to be multicast ready and that on
some networks the delay of packets will increase. Also the packet loss can be
higher if multicast is chosen (this is often a problem when WLAN is used).
This can cause unintentional timeouts, if the sources are only transmitting
every 2 seconds (like grandMA2 consoles).*/
package sacn
